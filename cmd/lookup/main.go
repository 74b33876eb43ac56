package main

// One-shot lookup tool: queries a single source for a single identifier and
// prints the normalized record as JSON.

import (
	"encoding/json"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aftermarketpl/companylookup/pkg/ceidg"
	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/gus"
	"github.com/aftermarketpl/companylookup/pkg/kas"
	"github.com/aftermarketpl/companylookup/pkg/logutils"
	"github.com/aftermarketpl/companylookup/pkg/vat"
	"github.com/aftermarketpl/companylookup/pkg/vies"
)

var args struct {
	Source string `arg:"positional,required" help:"one of: vies, vat, ceidg, gus, kas"`
	Id     string `arg:"positional,required"`

	Type        string `arg:"--type" default:"nip"`
	Date        string `arg:"--date" help:"point-in-time lookup (vat, kas)"`
	Partnership bool   `arg:"--partnership" help:"expand a civil partnership (ceidg)"`
	LogLevel    string `arg:"--log-level,env:LOG_LEVEL" default:"warn"`
	CeidgApiKey string `arg:"--ceidg-api-key,env:CEIDG_API_KEY"`
	GusApiKey   string `arg:"--gus-api-key,env:GUS_API_KEY"`
}

var log = logrus.StandardLogger()

func main() {
	_ = godotenv.Load()
	arg.MustParse(&args)
	logutils.SetLoggerLevel(args.LogLevel)

	typ := companydata.IdentifierType(args.Type)

	var result any
	var err error
	switch args.Source {
	case "vies":
		result, err = vies.New().Lookup(args.Id, typ)
	case "vat":
		if args.Date != "" {
			result, err = vat.New().LookupByDate(args.Id, args.Date, typ)
		} else {
			result, err = vat.New().Lookup(args.Id, typ)
		}
	case "ceidg":
		reader := ceidg.New(args.CeidgApiKey)
		if args.Partnership {
			result, err = reader.LookupPartnership(args.Id, typ)
		} else {
			result, err = reader.Lookup(args.Id, typ)
		}
	case "gus":
		result, err = gus.New(args.GusApiKey).Lookup(args.Id, typ)
	case "kas":
		var reader *kas.Reader
		reader, err = kas.New()
		if err == nil {
			if args.Date != "" {
				result, err = reader.LookupByDate(args.Id, args.Date, typ)
			} else {
				result, err = reader.Lookup(args.Id, typ)
			}
		}
	default:
		log.Fatalf("unknown source %q", args.Source)
	}
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}

package main

import (
	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	companylookup "github.com/aftermarketpl/companylookup"
	"github.com/aftermarketpl/companylookup/pkg/logutils"
)

var args struct {
	ListenAddr  string `arg:"--listen-addr,env:LISTEN_ADDR" default:":8080"`
	LogLevel    string `arg:"--log-level,env:LOG_LEVEL" default:"info"`
	LogJSON     bool   `arg:"--log-json,env:LOG_JSON"`
	CeidgApiKey string `arg:"--ceidg-api-key,env:CEIDG_API_KEY"`
	GusApiKey   string `arg:"--gus-api-key,env:GUS_API_KEY"`
}

var log = logrus.StandardLogger()

func main() {
	// Credentials usually live in a .env file next to the binary; a missing
	// file is fine, the env vars may be set directly.
	_ = godotenv.Load()
	arg.MustParse(&args)
	logutils.SetLoggerLevel(args.LogLevel)
	if args.LogJSON {
		logutils.UseJSONFormatter()
	}

	s, err := companylookup.New(companylookup.Config{
		CeidgApiKey: args.CeidgApiKey,
		GusApiKey:   args.GusApiKey,
	})
	if err != nil {
		log.Fatalf("create server: %v", err)
	}

	log.Infof("listening on %s", args.ListenAddr)
	if err := s.Run(args.ListenAddr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

package gus

import (
	"github.com/aftermarketpl/companylookup/pkg/lookup"
)

// Entity type flags used by the registry.
const (
	typeLegal   = "p"
	typeNatural = "f"
)

// BIR 1.1 full-report names.
const (
	reportLegal          = "BIR11OsPrawna"
	reportNaturalCeidg   = "BIR11OsFizycznaDzialalnoscCeidg"
	reportNaturalAgro    = "BIR11OsFizycznaDzialalnoscRolnicza"
	reportNaturalOther   = "BIR11OsFizycznaDzialalnoscPozostala"
	reportNaturalDeleted = "BIR11OsFizycznaDzialalnoscSkreslonaDo20141108"
	reportLegalPkd       = "BIR11OsPrawnaPkd"
	reportNaturalPkd     = "BIR11OsFizycznaPkd"
	reportLegalPartners  = "BIR11OsPrawnaSpolkiCywilnejWspolnicy"
	reportNaturalPerson  = "BIR11OsFizycznaDaneOgolne"
)

// SearchReport is the lightweight stub the DaneSzukajPodmioty operation
// returns for each matching registration.
type SearchReport struct {
	Regon           string `xml:"Regon"`
	Nip             string `xml:"Nip"`
	Name            string `xml:"Nazwa"`
	Type            string `xml:"Typ"`
	Silo            string `xml:"SilosID"`
	ActivityEndDate string `xml:"DataZakonczeniaDzialalnosci"`
	Street          string `xml:"Ulica"`
	PropertyNumber  string `xml:"NrNieruchomosci"`
	ApartmentNumber string `xml:"NrLokalu"`
	ZipCode         string `xml:"KodPocztowy"`
	City            string `xml:"Miejscowosc"`
}

// activityReportType resolves which extended report describes a stub. Legal
// persons share one report; natural persons are split by silo.
func activityReportType(report SearchReport) (string, error) {
	switch report.Type {
	case typeLegal:
		return reportLegal, nil
	case typeNatural:
		switch report.Silo {
		case "1":
			return reportNaturalCeidg, nil
		case "2":
			return reportNaturalAgro, nil
		case "3":
			return reportNaturalOther, nil
		case "4":
			return reportNaturalDeleted, nil
		}
		return "", &lookup.UnknownSiloError{Silo: report.Silo}
	}
	return "", &lookup.UnknownSiloError{Silo: report.Silo}
}

// pick walks a full-report row trying each field name in order; the registry
// prefixes the same attribute differently for legal (praw_) and natural
// (fiz_) persons.
func pick(row map[string]string, names ...string) string {
	for _, name := range names {
		if v, ok := row[name]; ok && v != "" {
			return v
		}
	}
	return ""
}

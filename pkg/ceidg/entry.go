package ceidg

// migrationPayload mirrors the XML document wrapped inside the SOAP result
// string. Field names follow the registry schema.
type migrationPayload struct {
	Entries []entry `xml:"InformacjaOWpisie"`
}

type entry struct {
	DanePodstawowe struct {
		Imie     string `xml:"Imie"`
		Nazwisko string `xml:"Nazwisko"`
		Firma    string `xml:"Firma"`
		NIP      string `xml:"NIP"`
		REGON    string `xml:"REGON"`
	} `xml:"DanePodstawowe"`

	DaneAdresowe struct {
		Main           entryAddress `xml:"AdresGlownegoMiejscaWykonywaniaDzialalnosci"`
		Correspondence entryAddress `xml:"AdresDoDoreczen"`
	} `xml:"DaneAdresowe"`

	DaneDodatkowe struct {
		Status    string `xml:"Status"`
		StartDate string `xml:"DataRozpoczeciaWykonywaniaDzialalnosciGospodarczej"`
		EndDate   string `xml:"DataZaprzestaniaWykonywaniaDzialalnosciGospodarczej"`
		PkdCodes  string `xml:"KodyPKD"`
	} `xml:"DaneDodatkowe"`

	DaneKontaktowe struct {
		Phone   string `xml:"Telefon"`
		Fax     string `xml:"Faks"`
		Email   string `xml:"AdresPocztyElektronicznej"`
		Website string `xml:"AdresStronyInternetowej"`
	} `xml:"DaneKontaktowe"`
}

type entryAddress struct {
	Street     string `xml:"Ulica"`
	Building   string `xml:"Budynek"`
	Unit       string `xml:"Lokal"`
	City       string `xml:"Miejscowosc"`
	PostalCode string `xml:"KodPocztowy"`
}

package gus

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const DefaultEndpoint = "https://wyszukiwarkaregon.stat.gov.pl/wsBIR/UslugaBIRzewnPubl.svc"

// BIR error codes carried inside an otherwise successful response.
const (
	birErrNotFound       = "4"
	birErrInvalidSession = "7"
)

// birTransport is the default Transport: SOAP 1.2 with WS-Addressing and a
// session id header, which is why it does not share the gowsdl client the
// SOAP 1.1 adapters use.
type birTransport struct {
	endpoint string
	apiKey   string
	sid      string
	http     *http.Client
}

func newBirTransport(endpoint string, apiKey string) *birTransport {
	return &birTransport{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     http.DefaultClient,
	}
}

// SetHttpTransport replaces the underlying HTTP transport, used by tests.
func (t *birTransport) SetHttpTransport(transport http.RoundTripper) {
	t.http.Transport = transport
}

const loginEnvelope = `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:wsa="http://www.w3.org/2005/08/addressing" xmlns:ns="http://CIS/BIR/PUBL/2014/07">
<soap:Header><wsa:Action>http://CIS/BIR/PUBL/2014/07/IUslugaBIRzewnPubl/Zaloguj</wsa:Action><wsa:To>%s</wsa:To></soap:Header>
<soap:Body><ns:Zaloguj><ns:pKluczUzytkownika>%s</ns:pKluczUzytkownika></ns:Zaloguj></soap:Body>
</soap:Envelope>`

func (t *birTransport) Login() error {
	body, err := t.call(fmt.Sprintf(loginEnvelope, t.endpoint, t.apiKey))
	if err != nil {
		return err
	}
	sid := strings.TrimSpace(resultPayload(body, "ZalogujResult"))
	if sid == "" {
		return ErrInvalidKey
	}
	t.sid = sid
	return nil
}

const searchEnvelope = `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:wsa="http://www.w3.org/2005/08/addressing" xmlns:ns="http://CIS/BIR/PUBL/2014/07" xmlns:dat="http://CIS/BIR/PUBL/2014/07/DataContract">
<soap:Header><wsa:Action>http://CIS/BIR/PUBL/2014/07/IUslugaBIRzewnPubl/DaneSzukajPodmioty</wsa:Action><wsa:To>%s</wsa:To></soap:Header>
<soap:Body><ns:DaneSzukajPodmioty><ns:pParametryWyszukiwania>%s</ns:pParametryWyszukiwania></ns:DaneSzukajPodmioty></soap:Body>
</soap:Envelope>`

func (t *birTransport) Search(q SearchQuery) ([]SearchReport, error) {
	var params string
	switch {
	case q.Nip != "":
		params = fmt.Sprintf("<dat:Nip>%s</dat:Nip>", q.Nip)
	case q.Regon != "":
		params = fmt.Sprintf("<dat:Regon>%s</dat:Regon>", q.Regon)
	case q.Krs != "":
		params = fmt.Sprintf("<dat:Krs>%s</dat:Krs>", q.Krs)
	default:
		return nil, fmt.Errorf("empty search query")
	}

	body, err := t.call(fmt.Sprintf(searchEnvelope, t.endpoint, params))
	if err != nil {
		return nil, err
	}
	payload := resultPayload(body, "DaneSzukajPodmiotyResult")
	if err := birError(payload); err != nil {
		return nil, err
	}

	var doc struct {
		Reports []SearchReport `xml:"dane"`
	}
	if err := xml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("unable to parse search result: %v", err)
	}
	return doc.Reports, nil
}

const fullReportEnvelope = `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope" xmlns:wsa="http://www.w3.org/2005/08/addressing" xmlns:ns="http://CIS/BIR/PUBL/2014/07">
<soap:Header><wsa:Action>http://CIS/BIR/PUBL/2014/07/IUslugaBIRzewnPubl/DanePobierzPelnyRaport</wsa:Action><wsa:To>%s</wsa:To></soap:Header>
<soap:Body><ns:DanePobierzPelnyRaport><ns:pRegon>%s</ns:pRegon><ns:pNazwaRaportu>%s</ns:pNazwaRaportu></ns:DanePobierzPelnyRaport></soap:Body>
</soap:Envelope>`

func (t *birTransport) FullReport(regon string, reportType string) ([]map[string]string, error) {
	body, err := t.call(fmt.Sprintf(fullReportEnvelope, t.endpoint, regon, reportType))
	if err != nil {
		return nil, err
	}
	payload := resultPayload(body, "DanePobierzPelnyRaportResult")
	if err := birError(payload); err != nil {
		return nil, err
	}
	return parseRows(payload)
}

func (t *birTransport) call(envelope string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, t.endpoint, strings.NewReader(envelope))
	if err != nil {
		return "", fmt.Errorf("unable to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	if t.sid != "" {
		req.Header.Set("sid", t.sid)
	}

	res, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to perform HTTP request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", res.Status)
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read response: %v", err)
	}
	return string(raw), nil
}

// resultPayload cuts the named result element out of the response and
// unescapes the XML document the registry embeds in it.
func resultPayload(body string, tag string) string {
	re := regexp.MustCompile(`(?s)<` + tag + `>(.*)</` + tag + `>`)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return html.UnescapeString(m[1])
}

// birError maps the ErrorCode rows the registry uses instead of SOAP faults.
func birError(payload string) error {
	rows, err := parseRows(payload)
	if err != nil || len(rows) == 0 {
		return nil
	}
	switch rows[0]["ErrorCode"] {
	case "":
		return nil
	case birErrNotFound:
		return ErrNotFound
	case birErrInvalidSession:
		return ErrInvalidKey
	}
	return fmt.Errorf("registry error %s: %s", rows[0]["ErrorCode"], rows[0]["ErrorMessagePl"])
}

// parseRows flattens each <dane> row into a field map, keeping the protocol's
// per-entity-type field prefixes intact for the caller to resolve.
func parseRows(payload string) ([]map[string]string, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, nil
	}
	var doc struct {
		Rows []struct {
			Fields []struct {
				XMLName xml.Name
				Value   string `xml:",chardata"`
			} `xml:",any"`
		} `xml:"dane"`
	}
	if err := xml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("unable to parse report rows: %v", err)
	}

	rows := make([]map[string]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		row := make(map[string]string, len(r.Fields))
		for _, f := range r.Fields {
			row[f.XMLName.Local] = strings.TrimSpace(f.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

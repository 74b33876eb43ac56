package companylookup

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aftermarketpl/companylookup/pkg/ceidg"
	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/gus"
	"github.com/aftermarketpl/companylookup/pkg/kas"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vat"
	"github.com/aftermarketpl/companylookup/pkg/vies"
)

var log = logrus.StandardLogger().WithField("package", "companylookup")

// Config carries the upstream credentials the adapters need.
type Config struct {
	CeidgApiKey string
	GusApiKey   string
}

// Server exposes the source adapters over HTTP.
type Server struct {
	e *gin.Engine

	vies  *vies.Reader
	vat   *vat.Reader
	ceidg *ceidg.Reader
	gus   *gus.Reader
	kas   *kas.Reader
}

func New(cfg Config) (*Server, error) {
	kasReader, err := kas.New()
	if err != nil {
		return nil, err
	}

	s := Server{
		e:     gin.New(),
		vies:  vies.New(),
		vat:   vat.New(),
		ceidg: ceidg.New(cfg.CeidgApiKey),
		gus:   gus.New(cfg.GusApiKey),
		kas:   kasReader,
	}
	s.initRoutes()
	return &s, nil
}

func (s *Server) Run(addr string) error {
	return s.e.Run(addr)
}

func (s *Server) initRoutes() {
	s.e.Use(gin.Logger())
	s.e.Use(cors.Default())
	s.e.Use(requestId())

	s.e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := s.e.Group("/api/v1")
	g.GET("/lookup/:source/:id", s.handleLookup)
	g.GET("/partnership/ceidg/:id", s.handlePartnership)
	g.GET("/search/ceidg", s.handleSearch)
}

// requestId tags every request with a correlation id, echoed in the response
// headers so upstream hiccups can be traced in the logs.
func requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// reader resolves a source name to its adapter; every adapter satisfies
// lookup.Reader.
func (s *Server) reader(source string) lookup.Reader {
	switch source {
	case "vies":
		return s.vies
	case "vat":
		return s.vat
	case "ceidg":
		return s.ceidg
	case "gus":
		return s.gus
	case "kas":
		return s.kas
	}
	return nil
}

func (s *Server) handleLookup(c *gin.Context) {
	source := c.Param("source")
	id := c.Param("id")
	typ := identifierType(c.DefaultQuery("type", "nip"))
	date := c.Query("date")

	reader := s.reader(source)
	if reader == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown source"})
		return
	}

	var data *companydata.CompanyData
	var err error
	switch {
	case date != "" && source == "vat":
		data, err = s.vat.LookupByDate(id, date, typ)
	case date != "" && source == "kas":
		data, err = s.kas.LookupByDate(id, date, typ)
	default:
		data, err = reader.Lookup(id, typ)
	}

	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) handlePartnership(c *gin.Context) {
	typ := identifierType(c.DefaultQuery("type", "nip"))
	companies, err := s.ceidg.LookupPartnership(c.Param("id"), typ)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (s *Server) handleSearch(c *gin.Context) {
	params := map[string]string{}
	if name := c.Query("name"); name != "" {
		params["name"] = name
	}
	companies, err := s.ceidg.Search(params)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func identifierType(raw string) companydata.IdentifierType {
	return companydata.IdentifierType(raw)
}

func (s *Server) writeError(c *gin.Context, err error) {
	var validationErr *lookup.ValidationError
	var typeErr *lookup.UnsupportedIdentifierTypeError
	var paramErr *lookup.UnsupportedParameterError
	var unavailableErr *lookup.UnavailableError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &typeErr),
		errors.As(err, &paramErr),
		errors.Is(err, lookup.ErrEmptySearchParameters):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lookup.ErrEmptyResponse):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &unavailableErr):
		log.Errorf("upstream unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Errorf("lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
	}
}

var internalServerError = gin.H{
	"error": "internal server error",
}

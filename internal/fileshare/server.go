package fileshare

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the FileShare HTTP service.
type Server struct {
	echo  *echo.Echo
	store ObjectStore
	db    Database

	requests *prometheus.CounterVec
}

// NewServer builds the service with its routes registered. Metrics are
// registered on a private registry so tests can build servers repeatedly.
func NewServer(store ObjectStore, db Database) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		echo:  echo.New(),
		store: store,
		db:    db,
		requests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "fileshare_requests_total",
			Help: "HTTP requests served, by path and status code.",
		}, []string{"path", "status"}),
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.Logger())
	s.echo.Use(s.countRequests)

	s.echo.GET("/up", s.health)
	s.echo.GET("/upload", s.uploadPage)
	s.echo.POST("/upload_success", s.uploadFile)
	s.echo.GET("/files", s.listFiles)
	s.echo.GET("/file/:name", s.downloadFile)
	s.echo.GET("/db_test", s.dbTest)
	s.echo.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return s
}

// Start serves until the listener fails or is closed.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
			err = nil
		}
		s.requests.WithLabelValues(c.Path(), strconv.Itoa(c.Response().Status)).Inc()
		return err
	}
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "200 OK")
}

func (s *Server) uploadPage(c echo.Context) error {
	return c.HTML(http.StatusOK, uploadPageHTML)
}

func (s *Server) uploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file part in the request"})
	}
	if fileHeader.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No selected file"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer src.Close()

	if err := s.store.Put(c.Request().Context(), fileHeader.Filename, src); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	url := s.store.URL(fileHeader.Filename)
	return c.HTML(http.StatusOK, fmt.Sprintf(uploadSuccessHTML, url, url))
}

func (s *Server) listFiles(c echo.Context) error {
	keys, err := s.store.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if keys == nil {
		keys = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"files": keys})
}

func (s *Server) downloadFile(c echo.Context) error {
	name := c.Param("name")

	data, err := s.store.Get(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func (s *Server) dbTest(c echo.Context) error {
	entries, err := s.db.Roundtrip(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string][]Entry{"results": entries})
}

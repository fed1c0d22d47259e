// Package server exposes the combine pipeline over a small local HTTP UI:
// upload a workbook, get the combined report back.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rbastia/amadaily/internal/config"
	"github.com/rbastia/amadaily/internal/exporter"
	"github.com/rbastia/amadaily/internal/parser"
	"github.com/rbastia/amadaily/internal/pipeline"
)

// Server wires the HTTP routes to the pipeline coordinator.
type Server struct {
	router *gin.Engine
	cfg    *config.AppConfig
	coord  *pipeline.Coordinator
	log    zerolog.Logger

	dataDir string

	// One run at a time; uploads queue behind the mutex.
	runMu sync.Mutex
}

// NewServer builds the server, ensuring the output directories exist.
func NewServer(cfg *config.AppConfig, log zerolog.Logger) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureOutputDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare output dir: %w", err)
	}

	s := &Server{
		router:  gin.New(),
		cfg:     cfg,
		coord:   pipeline.NewCoordinator(log),
		log:     log,
		dataDir: dataDir,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	api := s.router.Group("/api")
	{
		api.POST("/combine", s.handleCombine)
		api.GET("/outputs", s.handleListOutputs)
		api.GET("/outputs/:name", s.handleDownloadOutput)
		api.DELETE("/outputs/:name", s.handleDeleteOutput)
	}
}

// Response is the uniform JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func failure(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Code: 1, Message: msg})
}

// handleCombine accepts a multipart workbook upload, runs the pipeline and
// returns the run summary. Form fields single_sheet, intermediate and
// report_name override config defaults.
func (s *Server) handleCombine(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		failure(c, http.StatusBadRequest, "missing upload field 'file'")
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		failure(c, http.StatusBadRequest, "only .xlsx workbooks are accepted")
		return
	}

	uploadPath := filepath.Join(s.dataDir, "uploads", uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		failure(c, http.StatusInternalServerError, "save upload: "+err.Error())
		return
	}
	if !s.cfg.Output.KeepUploads {
		defer os.Remove(uploadPath)
	}

	opts := pipeline.Options{
		SingleSheet:      s.cfg.Report.SingleSheet || c.PostForm("single_sheet") == "true",
		EmitIntermediate: s.cfg.Report.EmitIntermediate || c.PostForm("intermediate") == "true",
		ReportName:       c.PostForm("report_name"),
		OutputDir:        filepath.Join(s.dataDir, "outputs"),
		TimesheetSheet:   s.cfg.Report.TimesheetSheet,
		JobSheetSheet:    s.cfg.Report.JobSheetSheet,
	}
	if opts.ReportName == "" {
		// Derive from the original filename, not the uuid-prefixed copy.
		base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
		if y, ok := parser.InferYearFromFilename(base); ok {
			opts.DefaultYear = y
		}
		opts.ReportName = base
	}

	s.runMu.Lock()
	summary, err := s.coord.Run(uploadPath, opts)
	s.runMu.Unlock()
	if err != nil {
		var notFound *parser.SheetNotFoundError
		var empty *pipeline.EmptyInputError
		var write *exporter.WriteError
		switch {
		case errors.As(err, &notFound), errors.As(err, &empty):
			failure(c, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &write):
			failure(c, http.StatusInternalServerError, err.Error())
		default:
			failure(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	summary.OutputPath = filepath.Base(summary.OutputPath)
	for i, p := range summary.Intermediates {
		summary.Intermediates[i] = filepath.Base(p)
	}
	success(c, summary)
}

type outputInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (s *Server) handleListOutputs(c *gin.Context) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, "outputs"))
	if err != nil {
		failure(c, http.StatusInternalServerError, err.Error())
		return
	}
	infos := make([]outputInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, outputInfo{Name: e.Name(), Size: fi.Size(), Modified: fi.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Modified.After(infos[j].Modified) })
	success(c, infos)
}

func (s *Server) outputPath(c *gin.Context) (string, bool) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == ".." || !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		failure(c, http.StatusBadRequest, "invalid output name")
		return "", false
	}
	path := filepath.Join(s.dataDir, "outputs", name)
	if _, err := os.Stat(path); err != nil {
		failure(c, http.StatusNotFound, "no such output")
		return "", false
	}
	return path, true
}

func (s *Server) handleDownloadOutput(c *gin.Context) {
	path, ok := s.outputPath(c)
	if !ok {
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleDeleteOutput(c *gin.Context) {
	path, ok := s.outputPath(c)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil {
		failure(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, gin.H{"deleted": filepath.Base(path)})
}

// Run starts the HTTP listener.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Package api provides the REST API server for midi2mml
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mabimml/midi2mml/pkg/converter"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title MIDI2MML API
// @version 1.0
// @description API for converting standard MIDI files into in-game MML voice scripts
// @host localhost:8080
// @BasePath /api/v1

// maxUploadBytes caps uploaded MIDI files; real game songs are tiny
const maxUploadBytes = 4 << 20

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert", handleConvert)
		v1.GET("/modes", listModes)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midi2mml",
	})
}

// listModes godoc
// @Summary List conversion modes
// @Description Returns the available voice partitioning modes and sort orders
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/modes [get]
func listModes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes": []string{string(converter.ModeNormal), string(converter.ModeInstrument)},
		"sort_orders": []string{
			string(converter.SortDefault),
			string(converter.SortName),
			string(converter.SortInstrument),
		},
	})
}

// handleConvert godoc
// @Summary Convert a MIDI file to MML voices
// @Description Upload a MIDI file and receive the generated MML voices as JSON
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to convert"
// @Param mode formData string false "Partitioning mode: normal or instrument (default: normal)"
// @Param char_limit formData int false "Per-voice character limit (default: 1200)"
// @Param compress formData bool false "Favor short plain note lengths over precision"
// @Param sort formData string false "Voice ordering: default, name or instrument"
// @Success 200 {object} converter.ConversionResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert [post]
func handleConvert(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}
	if !converter.IsMIDI(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a MIDI file"})
		return
	}

	opts, err := parseOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := converter.New().Convert(data, opts)
	if sortBy := converter.SortBy(c.PostForm("sort")); sortBy != "" && sortBy != converter.SortDefault {
		result.Voices = converter.SortVoices(result.Voices, sortBy)
	}

	c.JSON(http.StatusOK, result)
}

func parseOptions(c *gin.Context) (converter.Options, error) {
	opts := converter.DefaultOptions()

	switch mode := c.DefaultPostForm("mode", string(converter.ModeNormal)); converter.Mode(mode) {
	case converter.ModeNormal, converter.ModeInstrument:
		opts.Mode = converter.Mode(mode)
	default:
		return opts, fmt.Errorf("unknown mode %q", mode)
	}

	if raw := c.PostForm("char_limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return opts, fmt.Errorf("invalid char_limit %q", raw)
		}
		opts.CharLimit = limit
	}

	if raw := c.PostForm("compress"); raw != "" {
		compress, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid compress %q", raw)
		}
		opts.Compress = compress
	}

	return opts, nil
}

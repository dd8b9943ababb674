package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/dto"
	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/ingestion"
	"github.com/guttosm/tradenorm/internal/middleware"
	"github.com/guttosm/tradenorm/internal/service"
)

const (
	formFileField = "file"
	dateLayout    = "2006-01-02"
	maxListLimit  = 5000
)

// Handler provides HTTP handlers for the normalize, import and trade query
// endpoints.
type Handler struct {
	svc service.TradeService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.TradeService) *Handler {
	return &Handler{svc: svc}
}

// Normalize godoc
// @Summary      Normalize broker exports
// @Description  Parses one or more export files of the same broker in a single pass and returns canonical trades plus warnings. Nothing is stored.
// @Tags         normalize
// @Accept       multipart/form-data
// @Produce      json
// @Param        broker  path      string  true  "Broker name" Enums(schwab, firstrade)
// @Param        file    formData  file    true  "Export file (repeatable)"
// @Success      200     {object}  dto.NormalizeResponse
// @Failure      400     {object}  dto.ErrorResponse  "Unknown broker, missing file or undecodable export"
// @Failure      413     {object}  dto.ErrorResponse  "Upload too large"
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /api/v1/normalize/{broker} [post]
func (h *Handler) Normalize(c *gin.Context) {
	name := c.Param("broker")
	files, _, ok := readUploads(c)
	if !ok {
		return
	}

	res, err := h.svc.Normalize(c.Request.Context(), name, files...)
	if err != nil {
		abortForServiceError(c, "failed to normalize export", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNormalizeResponse(strings.ToLower(name), len(files), res))
}

// Import godoc
// @Summary      Import broker exports
// @Description  Normalizes and stores each uploaded file. Files already imported (same SHA-256) are skipped unless force=true.
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        broker  path      string  true   "Broker name" Enums(schwab, firstrade)
// @Param        file    formData  file    true   "Export file (repeatable)"
// @Param        force   query     bool    false  "Replace an existing import of the same file"
// @Success      200     {object}  dto.ImportResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      413     {object}  dto.ErrorResponse
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /api/v1/imports/{broker} [post]
func (h *Handler) Import(c *gin.Context) {
	name := c.Param("broker")
	force, err := parseBool(c.Query("force"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid force value", err)
		return
	}
	files, names, ok := readUploads(c)
	if !ok {
		return
	}

	out := dto.ImportResponse{Broker: strings.ToLower(name), Imports: make([]models.ImportResult, 0, len(files))}
	for i, data := range files {
		res, err := h.svc.Import(c.Request.Context(), name, names[i], data, force)
		if err != nil {
			abortForServiceError(c, fmt.Sprintf("failed to import %s", names[i]), err)
			return
		}
		out.Imports = append(out.Imports, res)
	}
	c.JSON(http.StatusOK, out)
}

// ListTrades godoc
// @Summary      List stored trades
// @Description  Returns imported trades ordered by trade date, optionally filtered.
// @Tags         trades
// @Produce      json
// @Param        ticker  query     string  false  "Ticker" example(NVDA)
// @Param        type    query     string  false  "Trade type" example(DIVIDEND)
// @Param        from    query     string  false  "First trade date, YYYY-MM-DD" example(2025-01-01)
// @Param        to      query     string  false  "Last trade date (inclusive), YYYY-MM-DD" example(2025-12-31)
// @Param        limit   query     int     false  "Max rows (default 500, max 5000)"
// @Success      200     {object}  dto.TradesResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /api/v1/trades [get]
func (h *Handler) ListTrades(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	trades, err := h.svc.ListTrades(c.Request.Context(), filter)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to list trades", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradesResponse(trades))
}

// readUploads loads every multipart "file" part. On failure it has already
// written the error response.
func readUploads(c *gin.Context) ([][]byte, []string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		abortForUploadError(c, err)
		return nil, nil, false
	}
	headers := form.File[formFileField]
	if len(headers) == 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "at least one file is required", errors.New(`missing multipart field "file"`))
		return nil, nil, false
	}

	files := make([][]byte, 0, len(headers))
	names := make([]string, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			abortForUploadError(c, err)
			return nil, nil, false
		}
		files = append(files, data)
		names = append(names, fh.Filename)
	}
	return files, names, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func abortForUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, "upload too large", err)
		return
	}
	middleware.AbortWithError(c, http.StatusBadRequest, "invalid multipart upload", err)
}

// abortForServiceError maps client mistakes to 400 and everything else to 500.
func abortForServiceError(c *gin.Context, message string, err error) {
	var decodeErr *broker.DecodeError
	switch {
	case errors.Is(err, ingestion.ErrUnknownBroker), errors.As(err, &decodeErr):
		middleware.AbortWithError(c, http.StatusBadRequest, message, err)
	default:
		middleware.AbortWithError(c, http.StatusInternalServerError, message, err)
	}
}

func parseFilter(c *gin.Context) (models.TradeFilter, error) {
	f := models.TradeFilter{Ticker: strings.ToUpper(strings.TrimSpace(c.Query("ticker")))}

	if s := strings.TrimSpace(c.Query("type")); s != "" {
		t := models.TradeType(strings.ToUpper(s))
		if !t.Valid() {
			return f, fmt.Errorf("unknown trade type %q", s)
		}
		f.Type = t
	}
	if s := c.Query("from"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fmt.Errorf("invalid from, expected YYYY-MM-DD: %w", err)
		}
		f.From = &d
	}
	if s := c.Query("to"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fmt.Errorf("invalid to, expected YYYY-MM-DD: %w", err)
		}
		// inclusive: last instant of that UTC day
		end := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, errors.New("to is before from")
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxListLimit {
			return f, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
		}
		f.Limit = n
	}
	return f, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

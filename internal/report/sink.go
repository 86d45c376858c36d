package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/logger"
)

// Format selects the persisted representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat accepts "json" and "text" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatText, "txt":
		return FormatText, nil
	default:
		return "", &apperrors.ConfigurationError{
			Field:   "output-format",
			Message: fmt.Sprintf("unsupported format %q (want json or text)", s),
		}
	}
}

func (f Format) extension() string {
	if f == FormatText {
		return ".txt"
	}
	return ".json"
}

// FileName returns the timestamped report file name for the given moment.
func FileName(at time.Time, format Format) string {
	return "matching_report_" + at.Format("20060102_150405") + format.extension()
}

// Sink persists reports into a directory.
type Sink struct {
	dir    string
	now    func() time.Time
	topN   int
	logger *zap.Logger
}

func NewSink(dir string, now func() time.Time, topN int, log *zap.Logger) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{dir: dir, now: now, topN: topN, logger: logger.WithFields(log)}
}

// Write renders the report and stores it in a new timestamped file. It returns the file path.
// Every failure is an *apperrors.PersistenceError.
func (s *Sink) Write(r *Report, format Format) (string, error) {
	path := filepath.Join(s.dir, FileName(s.now(), format))

	data, err := s.render(r, format)
	if err != nil {
		return "", &apperrors.PersistenceError{Path: path, Err: err}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &apperrors.PersistenceError{Path: path, Err: err}
	}

	if err := writeFile(path, data); err != nil {
		return "", &apperrors.PersistenceError{Path: path, Err: err}
	}

	s.logger.Info("report saved", zap.String("path", path), zap.String("format", string(format)))
	return path, nil
}

func (s *Sink) render(r *Report, format Format) ([]byte, error) {
	if format == FormatText {
		var buf bytes.Buffer
		if err := RenderText(&buf, r, s.topN); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return Encode(r)
}

// Encode serializes the report as indented JSON and checks it against the output schema.
func Encode(r *Report) ([]byte, error) {
	out := *r
	if out.Matches == nil {
		out.Matches = []CandidateResult{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	if err := ValidateJSON(data); err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = f.Write(data)
	return err
}

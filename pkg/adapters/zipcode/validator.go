package zipcode

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.zippopotam.us/us"
	DefaultTimeout = 2 * time.Second

	// ColumnZipCode is the CSV header holding the approved codes.
	ColumnZipCode = "zip_code"
)

// DefaultStates are the approved state abbreviations.
var DefaultStates = []string{"MS", "AL", "LA", "GA"}

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Validator implements ports.ZipChecker. It asks the Zippopotam.us API for the
// state of a ZIP code and falls back to a local allow-list on any API failure.
type Validator struct {
	baseURL   string
	client    *http.Client
	states    map[string]bool
	allowList map[string]bool
	logger    *slog.Logger
}

type Option func(*Validator)

// WithBaseURL overrides the lookup endpoint.
func WithBaseURL(url string) Option {
	return func(v *Validator) {
		v.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) {
		v.client = c
	}
}

// WithStates replaces the approved state set.
func WithStates(states ...string) Option {
	return func(v *Validator) {
		v.states = make(map[string]bool, len(states))
		for _, s := range states {
			v.states[strings.ToUpper(strings.TrimSpace(s))] = true
		}
	}
}

// WithAllowList sets the fallback ZIP codes.
func WithAllowList(zips map[string]bool) Option {
	return func(v *Validator) {
		v.allowList = zips
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: DefaultTimeout},
		allowList: map[string]bool{},
	}
	WithStates(DefaultStates...)(v)
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v
}

// Eligible reports whether the ZIP code is inside the service area.
func (v *Validator) Eligible(ctx context.Context, zip string) bool {
	zip = strings.TrimSpace(zip)
	if !zipPattern.MatchString(zip) {
		return false
	}

	state, err := v.lookupState(ctx, zip)
	if err != nil {
		v.logger.Warn("zip lookup failed, using allow-list", "zip", zip, "err", err)
		return v.allowList[zip]
	}

	v.logger.Debug("zip lookup", "zip", zip, "state", state)
	return v.states[state]
}

type lookupResponse struct {
	Places []struct {
		StateAbbreviation string `json:"state abbreviation"`
	} `json:"places"`
}

func (v *Validator) lookupState(ctx context.Context, zip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/"+zip, nil)
	if err != nil {
		return "", err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(body.Places) == 0 {
		return "", errors.New("no places in response")
	}
	return strings.ToUpper(body.Places[0].StateAbbreviation), nil
}

// LoadAllowList reads the zip_code column of a CSV file.
func LoadAllowList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allow-list: %w", err)
	}
	defer f.Close()
	return ReadAllowList(f)
}

// ReadAllowList parses CSV data with a zip_code header column.
func ReadAllowList(r io.Reader) (map[string]bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read allow-list header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")) == ColumnZipCode {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("allow-list has no %q column", ColumnZipCode)
	}

	zips := make(map[string]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read allow-list: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if zip := strings.TrimSpace(record[col]); zip != "" {
			zips[zip] = true
		}
	}
	return zips, nil
}

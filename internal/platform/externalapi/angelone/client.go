package angelone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/usecase"
	refentity "industry_backend/internal/feature/instruments/domain/entity"
	"industry_backend/internal/platform/externalapi/angelone/dto"
	"industry_backend/internal/shared/istclock"
)

const (
	loginPath  = "/rest/auth/angelbroking/user/v1/loginByPassword"
	candlePath = "/rest/secure/angelbroking/historical/v1/getCandleData"

	intervalDaily = "ONE_DAY"

	// errInvalidToken is returned when the session JWT has expired.
	errInvalidToken = "AG8001"
)

var (
	// ErrUnknownInstrument is returned when no scrip matches an instrument.
	ErrUnknownInstrument = errors.New("instrument not in scrip master")

	errSessionExpired = errors.New("session expired")
)

// Client fetches daily candles. It logs in lazily, re-logs in once when the
// session expires, and loads the scrip master once per process.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time

	mu  sync.Mutex
	jwt string

	masterMu sync.Mutex
	master   *scripIndex
}

var _ usecase.BrokerageClient = (*Client)(nil)

// NewClient creates a new Client with the given config and HTTP client.
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client, now: time.Now}
}

// Historical returns the daily candles of in between from and to, inclusive,
// and the market the instrument was resolved on.
func (c *Client) Historical(ctx context.Context, in refentity.Instrument, from, to time.Time) (entity.Market, []entity.RawCandle, error) {
	idx, err := c.scripMaster(ctx)
	if err != nil {
		return "", nil, err
	}
	scrip, ok := idx.lookup(in)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, in.Code)
	}
	market := entity.MarketBSE
	if scrip.ExchSeg == "NSE" {
		market = entity.MarketNSE
	}

	req := dto.CandleRequest{
		Exchange:    scrip.ExchSeg,
		SymbolToken: scrip.Token,
		Interval:    intervalDaily,
		FromDate:    istclock.Format(from) + " 09:15",
		ToDate:      istclock.Format(to) + " 15:30",
	}

	var raw []dto.Candle
	err = c.withSession(ctx, func(jwt string) error {
		return c.post(ctx, candlePath, jwt, req, &raw)
	})
	if err != nil {
		return "", nil, fmt.Errorf("candles %s: %w", in.Code, err)
	}

	candles := make([]entity.RawCandle, 0, len(raw))
	for _, r := range raw {
		rc, err := decodeCandle(r)
		if err != nil {
			slog.Warn("angelone candle skipped", "code", in.Code, "error", err)
			continue
		}
		candles = append(candles, rc)
	}
	return market, candles, nil
}

// withSession runs fn with a session token, logging in first when needed
// and once more when the token turns out to be expired.
func (c *Client) withSession(ctx context.Context, fn func(jwt string) error) error {
	jwt, err := c.session(ctx, false)
	if err != nil {
		return err
	}
	err = fn(jwt)
	if !errors.Is(err, errSessionExpired) {
		return err
	}
	slog.Info("angelone session expired, logging in again")
	if jwt, err = c.session(ctx, true); err != nil {
		return err
	}
	return fn(jwt)
}

func (c *Client) session(ctx context.Context, renew bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jwt != "" && !renew {
		return c.jwt, nil
	}
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, c.now())
	if err != nil {
		return "", fmt.Errorf("generate totp: %w", err)
	}
	var tokens dto.Tokens
	body := dto.LoginRequest{ClientCode: c.cfg.ClientCode, Password: c.cfg.Password, TOTP: code}
	if err := c.post(ctx, loginPath, "", body, &tokens); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if tokens.JWTToken == "" {
		return "", errors.New("login: empty jwt")
	}
	c.jwt = tokens.JWTToken
	slog.Info("angelone login successful", "client_code", c.cfg.ClientCode)
	return c.jwt, nil
}

// post sends a SmartAPI request and decodes the envelope's data into out.
func (c *Client) post(ctx context.Context, path, jwt string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-UserType", "USER")
	req.Header.Set("X-SourceID", "WEB")
	req.Header.Set("X-ClientLocalIP", c.cfg.LocalIP)
	req.Header.Set("X-ClientPublicIP", c.cfg.PublicIP)
	req.Header.Set("X-MACAddress", c.cfg.MACAddress)
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)
	if jwt != "" {
		req.Header.Set("Authorization", "Bearer "+jwt)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return errSessionExpired
	}
	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("angelone http %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var env dto.Envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.ErrorCode == errInvalidToken {
		return errSessionExpired
	}
	if !env.Status {
		return fmt.Errorf("angelone %s: %s", env.ErrorCode, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func decodeCandle(r dto.Candle) (entity.RawCandle, error) {
	if len(r) < 6 {
		return entity.RawCandle{}, fmt.Errorf("candle has %d fields", len(r))
	}
	var rc entity.RawCandle
	if err := json.Unmarshal(r[0], &rc.Timestamp); err != nil {
		return rc, fmt.Errorf("timestamp: %w", err)
	}
	for i, dst := range []*float64{&rc.Open, &rc.High, &rc.Low, &rc.Close} {
		if err := json.Unmarshal(r[i+1], dst); err != nil {
			return rc, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	var vol float64
	if err := json.Unmarshal(r[5], &vol); err != nil {
		return rc, fmt.Errorf("volume: %w", err)
	}
	rc.Volume = int64(vol)
	return rc, nil
}

// scripIndex resolves instruments against the scrip master.
type scripIndex struct {
	byToken map[string][]dto.Scrip
	byName  map[string][]dto.Scrip
}

func newScripIndex(scrips []dto.Scrip) *scripIndex {
	idx := &scripIndex{byToken: map[string][]dto.Scrip{}, byName: map[string][]dto.Scrip{}}
	for _, s := range scrips {
		if s.ExchSeg != "NSE" && s.ExchSeg != "BSE" {
			continue
		}
		idx.byToken[s.Token] = append(idx.byToken[s.Token], s)
		idx.byName[strings.ToUpper(s.Name)] = append(idx.byName[strings.ToUpper(s.Name)], s)
	}
	return idx
}

// lookup matches a numeric code (a BSE scrip code, possibly written as a
// float) by token and anything else by name. NSE equity wins over other
// NSE series, which win over BSE.
func (idx *scripIndex) lookup(in refentity.Instrument) (dto.Scrip, bool) {
	code := strings.TrimSpace(in.Code)
	var candidates []dto.Scrip
	if f, err := strconv.ParseFloat(code, 64); err == nil {
		candidates = idx.byToken[strconv.FormatInt(int64(f), 10)]
	} else {
		candidates = idx.byName[strings.ToUpper(code)]
	}
	if len(candidates) == 0 {
		return dto.Scrip{}, false
	}
	best, rank := candidates[0], 0
	for _, s := range candidates {
		r := 0
		switch {
		case s.ExchSeg == "NSE" && strings.HasSuffix(s.Symbol, "-EQ"):
			r = 2
		case s.ExchSeg == "NSE":
			r = 1
		}
		if r > rank {
			best, rank = s, r
		}
	}
	return best, true
}

func (c *Client) scripMaster(ctx context.Context) (*scripIndex, error) {
	c.masterMu.Lock()
	defer c.masterMu.Unlock()
	if c.master != nil {
		return c.master, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ScripMasterURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrip master: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("scrip master http %d", res.StatusCode)
	}
	var scrips []dto.Scrip
	if err := json.NewDecoder(res.Body).Decode(&scrips); err != nil {
		return nil, fmt.Errorf("decode scrip master: %w", err)
	}
	c.master = newScripIndex(scrips)
	slog.Info("scrip master loaded", "entries", len(scrips))
	return c.master, nil
}

// Package dto mirrors the SmartAPI request and response bodies.
package dto

import "encoding/json"

// LoginRequest is the loginByPassword body.
type LoginRequest struct {
	ClientCode string `json:"clientcode"`
	Password   string `json:"password"`
	TOTP       string `json:"totp"`
}

// Envelope is the common response wrapper.
type Envelope struct {
	Status    bool            `json:"status"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorcode"`
	Data      json.RawMessage `json:"data"`
}

// Tokens is the data of a successful login.
type Tokens struct {
	JWTToken     string `json:"jwtToken"`
	RefreshToken string `json:"refreshToken"`
	FeedToken    string `json:"feedToken"`
}

// CandleRequest is the getCandleData body.
type CandleRequest struct {
	Exchange    string `json:"exchange"`
	SymbolToken string `json:"symboltoken"`
	Interval    string `json:"interval"`
	FromDate    string `json:"fromdate"`
	ToDate      string `json:"todate"`
}

// Candle is [timestamp, open, high, low, close, volume].
type Candle []json.RawMessage

// Scrip is one entry of the instrument master file.
type Scrip struct {
	Token          string `json:"token"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	ExchSeg        string `json:"exch_seg"`
	InstrumentType string `json:"instrumenttype"`
}

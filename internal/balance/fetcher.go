// Package balance turns provider balance lookups into display strings.
//
// Fetcher never returns an error: every failure is logged, counted and
// rendered as text, so chat commands and agent tools always have a reply.
package balance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/logger"
	"github.com/denysvitali/nbalance/internal/metrics"
	"github.com/denysvitali/nbalance/internal/provider"
	"github.com/denysvitali/nbalance/internal/provider/newapi"
)

// User-facing messages
const (
	msgStatusFailed = "查询失败，状态码: %d"
	msgAPIFailed    = "查询失败: %s"
	msgUnknownError = "未知错误"
	msgTimeout      = "查询超时，请稍后重试"
	msgNetwork      = "网络错误: %s"
	msgException    = "查询异常: %s: %s"
)

// Outcome classifies a query result
type Outcome string

// Query outcomes
const (
	OutcomeOK        Outcome = "ok"
	OutcomeStatus    Outcome = "status"
	OutcomeAPI       Outcome = "api"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeNetwork   Outcome = "network"
	OutcomeException Outcome = "exception"
)

// Result is the outcome of one balance query
type Result struct {
	Text    string            `json:"text"`
	Outcome Outcome           `json:"outcome"`
	Balance *provider.Balance `json:"balance,omitempty"`
}

// OK reports whether the query produced a balance
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Fetcher queries one provider and formats the result
type Fetcher struct {
	provider provider.Provider
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger discards logs.
func NewFetcher(p provider.Provider, l *zap.Logger) *Fetcher {
	return &Fetcher{
		provider: p,
		logger:   logger.OrNop(l),
	}
}

// Query fetches the balance and returns the display string
func (f *Fetcher) Query(ctx context.Context) string {
	return f.Fetch(ctx).Text
}

// Fetch fetches the balance and returns the classified result
func (f *Fetcher) Fetch(ctx context.Context) (res Result) {
	id := f.provider.ID()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Text:    fmt.Sprintf(msgException, "panic", fmt.Sprint(r)),
				Outcome: OutcomeException,
			}
			f.logger.Error("Balance query panicked", zap.String("provider", id), zap.Any("panic", r))
		}
		metrics.BalanceQueryDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
		metrics.BalanceQueriesTotal.WithLabelValues(id, string(res.Outcome)).Inc()
	}()

	b, err := f.provider.GetBalance(ctx)
	if err != nil {
		res = Describe(err)
		f.log(id, res, err)
		return res
	}

	metrics.BalanceAmount.WithLabelValues(id).Set(b.Amount)
	f.logger.Debug("Balance fetched",
		zap.String("provider", id),
		zap.Float64("quota", b.Quota),
		zap.Float64("amount", b.Amount),
	)

	return Result{
		Text:    b.Format(),
		Outcome: OutcomeOK,
		Balance: b,
	}
}

func (f *Fetcher) log(id string, res Result, err error) {
	fields := []zap.Field{
		zap.String("provider", id),
		zap.String("outcome", string(res.Outcome)),
		zap.Error(err),
	}
	switch res.Outcome {
	case OutcomeStatus, OutcomeAPI:
		f.logger.Warn("Balance query failed", fields...)
	default:
		f.logger.Error("Balance query error", fields...)
	}
}

// Describe maps a provider error to its outcome and display text
func Describe(err error) Result {
	var (
		statusErr  *newapi.StatusError
		apiErr     *newapi.APIError
		timeoutErr *newapi.TimeoutError
		netErr     *newapi.NetworkError
		queryErr   *newapi.QueryError
	)

	switch {
	case errors.As(err, &statusErr):
		return Result{Text: fmt.Sprintf(msgStatusFailed, statusErr.StatusCode), Outcome: OutcomeStatus}
	case errors.As(err, &apiErr):
		msg := msgUnknownError
		if apiErr.Message != nil {
			msg = *apiErr.Message
		}
		return Result{Text: fmt.Sprintf(msgAPIFailed, msg), Outcome: OutcomeAPI}
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return Result{Text: msgTimeout, Outcome: OutcomeTimeout}
	case errors.As(err, &netErr):
		return Result{Text: fmt.Sprintf(msgNetwork, netErr.Err.Error()), Outcome: OutcomeNetwork}
	case errors.As(err, &queryErr):
		return Result{Text: fmt.Sprintf(msgException, queryErr.Kind, queryErr.Err.Error()), Outcome: OutcomeException}
	default:
		return Result{Text: fmt.Sprintf(msgException, typeName(err), err.Error()), Outcome: OutcomeException}
	}
}

// typeName returns the bare type name of err, e.g. "errorString".
func typeName(err error) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/canteen-central/canteen-api/internal/dto"
	"github.com/canteen-central/canteen-api/internal/models"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
)

type schoolFinder interface {
	FindByID(ctx context.Context, id int64) (*models.School, error)
}

type financialDataProvider interface {
	FinancialSummary(ctx context.Context, schoolID int64, year, month int) (*models.FinancialSummary, error)
}

type insightCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AIService generates financial insights and powers the assistant chat. The
// model sits behind TextCompleter; insights are cached per school-period.
type AIService struct {
	completer TextCompleter
	schools   schoolFinder
	finances  financialDataProvider
	cache     insightCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAIService constructs the service. A nil completer means AI features are
// disabled and every call returns ErrAIUnavailable.
func NewAIService(completer TextCompleter, schools schoolFinder, finances financialDataProvider, cache insightCache, cacheTTL time.Duration, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &AIService{
		completer: completer,
		schools:   schools,
		finances:  finances,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Enabled reports whether a model backend is configured.
func (s *AIService) Enabled() bool {
	return s.completer != nil
}

// Insights generates a concise financial insight for one school-month.
// Results are cached; a cache hit skips the model call entirely.
func (s *AIService) Insights(ctx context.Context, actor *models.JWTClaims, req dto.AIInsightsRequest) (*dto.AIInsightsResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.Enabled() {
		return nil, appErrors.ErrAIUnavailable
	}

	schoolID, err := s.resolveSchool(actor, req.SchoolID)
	if err != nil {
		return nil, err
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid month: %d", req.Month))
	}

	school, err := s.loadSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	period := fmt.Sprintf("%s %d", time.Month(req.Month), req.Year)

	cacheKey := fmt.Sprintf("%s%04d-%02d", insightsCachePrefix(schoolID), req.Year, req.Month)
	if s.cache != nil {
		var cached dto.AIInsightsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("insight cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	data, err := s.gatherFinancialData(ctx, schoolID, req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	prompt := buildInsightsPrompt(school.Name, period, actor, data)
	insights, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("insight generation failed", zap.Int64("school_id", schoolID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "failed to generate insights")
	}

	resp := &dto.AIInsightsResponse{
		Insights:   strings.TrimSpace(insights),
		SchoolName: school.Name,
		Period:     period,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn("insight cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return resp, nil
}

// Chat answers one turn of the financial-assistant conversation, scoped to a
// single school's data.
func (s *AIService) Chat(ctx context.Context, actor *models.JWTClaims, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.Enabled() {
		return nil, appErrors.ErrAIUnavailable
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message is required")
	}

	schoolID, err := s.resolveSchool(actor, req.SchoolID)
	if err != nil {
		return nil, err
	}
	school, err := s.loadSchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	data, err := s.gatherFinancialData(ctx, schoolID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	prompt := buildChatPrompt(school.Name, actor, data, req)
	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("chat completion failed", zap.Int64("school_id", schoolID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "failed to process chat request")
	}

	return &dto.ChatResponse{
		Response:   strings.TrimSpace(reply),
		SchoolName: school.Name,
	}, nil
}

// resolveSchool pins non-district users to their own school; district roles
// may query any school.
func (s *AIService) resolveSchool(actor *models.JWTClaims, requested *int64) (int64, error) {
	district := actor.Role == models.RoleSuperintendent || actor.Role == models.RoleAdministrator
	switch {
	case requested == nil:
		if actor.SchoolID == nil {
			return 0, appErrors.Clone(appErrors.ErrValidation, "school_id is required for district accounts")
		}
		return *actor.SchoolID, nil
	case actor.SchoolID != nil && *actor.SchoolID != *requested && !district:
		return 0, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to access other schools' financial reports.")
	default:
		return *requested, nil
	}
}

func (s *AIService) loadSchool(ctx context.Context, id int64) (*models.School, error) {
	school, err := s.schools.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

// financialData bundles the current month, the previous month, and the deltas
// between them for prompt construction.
type financialData struct {
	current  *models.FinancialSummary
	previous *models.FinancialSummary
}

func (s *AIService) gatherFinancialData(ctx context.Context, schoolID int64, year, month int) (*financialData, error) {
	current, err := s.finances.FinancialSummary(ctx, schoolID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load financial data")
	}

	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}
	previous, err := s.finances.FinancialSummary(ctx, schoolID, prevYear, prevMonth)
	if err != nil {
		s.logger.Warn("previous month financial data unavailable",
			zap.Int64("school_id", schoolID),
			zap.Int("year", prevYear),
			zap.Int("month", prevMonth),
			zap.Error(err),
		)
		previous = &models.FinancialSummary{}
	}
	return &financialData{current: current, previous: previous}, nil
}

func buildInsightsPrompt(schoolName, period string, actor *models.JWTClaims, data *financialData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate financial insights for %s for %s.\n\n", schoolName, period)
	fmt.Fprintf(&b, "Current user context: %s\n\n", userContext(actor))
	writeFinancialSummary(&b, "Current month financial data", data.current)
	writeTrends(&b, data)
	b.WriteString("Provide a concise financial insight in exactly 50 words or less. Focus on:\n")
	b.WriteString("1. Performance trends\n2. Key financial metrics\n3. Brief recommendations\n\n")
	b.WriteString("Be specific about the school's financial performance and actionable insights.\n")
	b.WriteString("Do not use markdown syntax, only plaintext output is supported by the display.\n")
	return b.String()
}

func buildChatPrompt(schoolName string, actor *models.JWTClaims, data *financialData, req dto.ChatRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial assistant for %s. You can only provide information about this school's financial data.\n\n", schoolName)
	fmt.Fprintf(&b, "Current user context: %s\n\n", userContext(actor))
	writeFinancialSummary(&b, "Current financial summary", data.current)
	writeTrends(&b, data)
	fmt.Fprintf(&b, "Rules:\n1. Only discuss %s's financial data\n", schoolName)
	b.WriteString("2. Be helpful and provide actionable insights\n")
	b.WriteString("3. If asked about other schools, politely decline\n")
	b.WriteString("4. Use Philippine peso (₱) for currency\n")
	b.WriteString("5. Keep responses concise and professional\n\n")
	b.WriteString("Do not use markdown syntax, only plaintext output is supported by the display.\n\n")

	history := req.ConversationHistory
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s\n\nAssistant:", req.Message)
	return b.String()
}

func userContext(actor *models.JWTClaims) string {
	return fmt.Sprintf("User: %s (System Role: %s)", actor.FullName, actor.Role)
}

func writeFinancialSummary(b *strings.Builder, heading string, summary *models.FinancialSummary) {
	fmt.Fprintf(b, "%s:\n", heading)
	fmt.Fprintf(b, "- Sales: ₱%s\n", summary.Sales.StringFixed(2))
	fmt.Fprintf(b, "- Purchases: ₱%s\n", summary.Purchases.StringFixed(2))
	fmt.Fprintf(b, "- Net Income: ₱%s\n", summary.NetIncome().StringFixed(2))
	fmt.Fprintf(b, "- Daily Sales & Purchases Entries: %d\n", summary.EntriesCount)
	if summary.ReportStatus != "" {
		fmt.Fprintf(b, "- Report Status: %s\n", summary.ReportStatus)
	}
	fmt.Fprintf(b, "- Total Liquidation Expenses: ₱%s\n", summary.LiquidationTotal.StringFixed(2))
	for _, category := range models.LiquidationCategories {
		amount := summary.LiquidationByCategory[category]
		fmt.Fprintf(b, "- %s: ₱%s\n", category.DisplayName(), amount.StringFixed(2))
	}
	b.WriteString("\n")
}

func writeTrends(b *strings.Builder, data *financialData) {
	b.WriteString("Previous month comparison:\n")
	fmt.Fprintf(b, "- Sales Change: ₱%s\n", change(data.current.Sales, data.previous.Sales))
	fmt.Fprintf(b, "- Purchases Change: ₱%s\n", change(data.current.Purchases, data.previous.Purchases))
	fmt.Fprintf(b, "- Net Income Change: ₱%s\n", change(data.current.NetIncome(), data.previous.NetIncome()))
	fmt.Fprintf(b, "- Liquidation Expenses Change: ₱%s\n", change(data.current.LiquidationTotal, data.previous.LiquidationTotal))
	fmt.Fprintf(b, "- Previous Month Total Liquidation Expenses: ₱%s\n\n", data.previous.LiquidationTotal.StringFixed(2))
}

func change(current, previous decimal.Decimal) string {
	return current.Sub(previous).StringFixed(2)
}

// insightsCachePrefix keys all cached insight responses for one school, so a
// status change can drop the school's entries wholesale.
func insightsCachePrefix(schoolID int64) string {
	return fmt.Sprintf("ai:insights:%d:", schoolID)
}

// insightsCachePattern matches every cached insight for the school.
func insightsCachePattern(schoolID int64) string {
	return insightsCachePrefix(schoolID) + "*"
}

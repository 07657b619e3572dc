package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/data/session"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/converter/telebotConverter"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/editor"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg    = "Something went wrong, please try again."
	notFoundMsg       = "Nothing found for that id."
	noDraftMsg        = "Nothing is being edited. Use /edit <company id> or /metrics <company id>."
	unavailableErrMsg = "The backend is unavailable right now, your draft is kept. Try /save again."
	helpMsg           = `Commands:
/summary - portfolio headline figures
/companies - portfolio companies
/company <id> - company overview
/edit <id> - edit company details
/metrics <id> - record new metrics
/save - save the current draft
/cancel - discard the current draft
/report [fund id] - export the portfolio workbook`
)

type PortfolioService interface {
	GetPortfolioSummary(ctx context.Context) (model.PortfolioSummary, error)
	GetFunds(ctx context.Context) ([]model.Fund, error)
	GetCompanies(ctx context.Context) ([]model.Company, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (model.Company, error)
	GetCompanyOverview(ctx context.Context, companyID uuid.UUID) (model.CompanyOverview, error)
	UpdateCompany(ctx context.Context, companyID uuid.UUID, patch model.CompanyPatch) (model.Company, error)
	NewMetricsDraft(ctx context.Context, companyID uuid.UUID) (model.MetricsDraft, error)
	SaveMetrics(ctx context.Context, companyID uuid.UUID, draft model.MetricsDraft) (model.MetricsRecord, error)
	ExportReport(ctx context.Context, fundID uuid.UUID) (model.File, error)
}

type Session interface {
	GetChatSession(ctx context.Context, chatID string) (model.ChatSession, error)
	SetChatSession(ctx context.Context, chatID string, chatSession model.ChatSession) error
}

type Controller struct {
	portfolioService PortfolioService
	session          Session
}

func NewController(portfolioService PortfolioService, session Session) *Controller {
	return &Controller{
		portfolioService: portfolioService,
		session:          session,
	}
}

func chatKey(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

// respond answers a callback query, if any, and sends the message.
func respond(c tele.Context, what any, opts ...any) error {
	if c.Callback() != nil {
		_ = c.Respond()
	}
	return c.Send(what, opts...)
}

func (ctrl *Controller) replyErr(ctx context.Context, c tele.Context, err error) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return respond(c, telebotConverter.FieldErrorsResponse(verr.Fields))
	case errors.Is(err, service.ErrNotFound):
		return respond(c, notFoundMsg)
	case errors.Is(err, service.ErrStorageDisabled):
		return respond(c, "Report export is not configured.")
	case errors.Is(err, service.ErrUnavailable):
		slog.Error("backend unavailable", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return respond(c, unavailableErrMsg)
	default:
		slog.Error("request failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return respond(c, internalErrMsg)
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if err := ctrl.session.SetChatSession(ctx, chatKey(c), model.ChatSession{}); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	return c.Reply("Hello! This bot shows and edits the VC portfolio.\n\n" + helpMsg)
}

func (ctrl *Controller) Summary(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctrl.portfolioService.GetPortfolioSummary(ctx)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	text, markup := telebotConverter.SummaryResponse(summary)
	return respond(c, text, markup)
}

func (ctrl *Controller) Companies(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	companies, err := ctrl.portfolioService.GetCompanies(ctx)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	text, markup := telebotConverter.CompaniesResponse(companies)
	if markup == nil {
		return respond(c, text)
	}
	return respond(c, text, markup)
}

// idArg reads the id from a callback payload or the command argument.
func idArg(c tele.Context) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Data())
	if raw == "" {
		return uuid.Nil, errors.New("missing id")
	}
	return uuid.Parse(raw)
}

func (ctrl *Controller) Company(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	companyID, err := idArg(c)
	if err != nil {
		return respond(c, "Usage: /company <company id>")
	}

	overview, err := ctrl.portfolioService.GetCompanyOverview(ctx, companyID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	text, markup := telebotConverter.CompanyOverviewResponse(overview)
	return respond(c, text, markup)
}

// EditCompany starts an edit session seeded with the company's current details.
func (ctrl *Controller) EditCompany(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	companyID, err := idArg(c)
	if err != nil {
		return respond(c, "Usage: /edit <company id>")
	}

	company, err := ctrl.portfolioService.GetCompany(ctx, companyID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	ed := editor.New[model.CompanyDraft]()
	if err = ed.Begin(model.NewCompanyDraft(company)); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	if err = ctrl.storeEditor(ctx, c, model.EditingCompany, companyID, ed); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	draft, _ := ed.Draft()
	text, markup := telebotConverter.CompanyDraftResponse(draft)
	return respond(c, text, markup)
}

// EditMetrics starts a new metrics entry seeded with the latest recorded values.
func (ctrl *Controller) EditMetrics(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	companyID, err := idArg(c)
	if err != nil {
		return respond(c, "Usage: /metrics <company id>")
	}

	draft, err := ctrl.portfolioService.NewMetricsDraft(ctx, companyID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	ed := editor.New[model.MetricsDraft]()
	if err = ed.Begin(draft); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	if err = ctrl.storeEditor(ctx, c, model.EditingMetrics, companyID, ed); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	text, markup := telebotConverter.MetricsDraftResponse(draft)
	return respond(c, text, markup)
}

// OnText applies "field: value" lines to the draft being edited.
func (ctrl *Controller) OnText(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getChatSession(ctx, c)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	switch chatSession.Action {
	case model.EditingCompany:
		return updateDraft(ctx, ctrl, c, chatSession, companySetters, telebotConverter.CompanyDraftResponse)
	case model.EditingMetrics:
		return updateDraft(ctx, ctrl, c, chatSession, metricsSetters, telebotConverter.MetricsDraftResponse)
	default:
		return c.Send(noDraftMsg)
	}
}

func updateDraft[T any](
	ctx context.Context,
	ctrl *Controller,
	c tele.Context,
	chatSession model.ChatSession,
	setters map[string]setter[T],
	render func(T) (string, *tele.ReplyMarkup),
) error {
	ed, err := loadEditor[T](chatSession)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	var applyErr error
	if err = ed.Update(func(draft *T) { applyErr = applyLines(draft, c.Text(), setters) }); err != nil {
		return c.Send(noDraftMsg)
	}

	if err = ctrl.storeEditor(ctx, c, chatSession.Action, chatSession.CompanyID, ed); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}

	if applyErr != nil {
		return ctrl.replyErr(ctx, c, applyErr)
	}

	draft, _ := ed.Draft()
	text, markup := render(draft)
	return c.Send(text, markup)
}

// Save submits the draft. On failure the draft stays in the chat session for another try.
func (ctrl *Controller) Save(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getChatSession(ctx, c)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	companyID := chatSession.CompanyID

	switch chatSession.Action {
	case model.EditingCompany:
		var saved model.Company
		ok, err := saveDraft(ctx, ctrl, c, chatSession, func(ctx context.Context, draft model.CompanyDraft) error {
			company, err := ctrl.portfolioService.UpdateCompany(ctx, companyID, draft.Patch())
			saved = company
			return err
		})
		if !ok {
			return err
		}
		return respond(c, fmt.Sprintf("✅ %s saved.", saved.Name))
	case model.EditingMetrics:
		var saved model.MetricsRecord
		ok, err := saveDraft(ctx, ctrl, c, chatSession, func(ctx context.Context, draft model.MetricsDraft) error {
			record, err := ctrl.portfolioService.SaveMetrics(ctx, companyID, draft)
			saved = record
			return err
		})
		if !ok {
			return err
		}
		return respond(c, fmt.Sprintf("✅ Metrics recorded for %s.", saved.MetricDate))
	default:
		return respond(c, noDraftMsg)
	}
}

// saveDraft reports whether the draft was saved. When it wasn't, the user has already been answered.
func saveDraft[T any](ctx context.Context, ctrl *Controller, c tele.Context, chatSession model.ChatSession, fn editor.SaveFunc[T]) (bool, error) {
	ed, err := loadEditor[T](chatSession)
	if err != nil {
		return false, ctrl.replyErr(ctx, c, err)
	}

	saveErr := ed.Save(ctx, fn)
	if errors.Is(saveErr, editor.ErrNotEditing) {
		return false, respond(c, noDraftMsg)
	}
	if saveErr != nil {
		// the editor is back in Editing with the draft intact
		if err = ctrl.storeEditor(ctx, c, chatSession.Action, chatSession.CompanyID, ed); err != nil {
			slog.Error("can't keep draft", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		}
		return false, ctrl.replyErr(ctx, c, saveErr)
	}

	chatSession.Reset()
	if err = ctrl.session.SetChatSession(ctx, chatKey(c), chatSession); err != nil {
		slog.Error("can't reset chat session", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	}
	return true, nil
}

// Cancel drops the draft without sending anything to the backend.
func (ctrl *Controller) Cancel(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getChatSession(ctx, c)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	if chatSession.Action == model.DefaultAction {
		return respond(c, noDraftMsg)
	}

	chatSession.Reset()
	if err = ctrl.session.SetChatSession(ctx, chatKey(c), chatSession); err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	return respond(c, "Draft discarded.")
}

// Report exports the workbook for the given fund, or for the first fund when none is given.
func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	fundID, err := idArg(c)
	if err != nil {
		funds, err := ctrl.portfolioService.GetFunds(ctx)
		if err != nil {
			return ctrl.replyErr(ctx, c, err)
		}
		if len(funds) == 0 {
			return respond(c, "No fund exists yet.")
		}
		fundID = funds[0].ID
	}

	if c.Callback() != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: "Building report..."})
	}

	file, err := ctrl.portfolioService.ExportReport(ctx, fundID)
	if err != nil {
		return ctrl.replyErr(ctx, c, err)
	}
	return c.Send(telebotConverter.FileResponse(file))
}

func (ctrl *Controller) getChatSession(ctx context.Context, c tele.Context) (model.ChatSession, error) {
	chatSession, err := ctrl.session.GetChatSession(ctx, chatKey(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.ChatSession{}, nil
		}
		slog.Error("got error from session.GetChatSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return model.ChatSession{}, err
	}
	return chatSession, nil
}

func loadEditor[T any](chatSession model.ChatSession) (*editor.Editor[T], error) {
	ed := editor.New[T]()
	if len(chatSession.Editor) == 0 {
		return ed, nil
	}
	if err := json.Unmarshal(chatSession.Editor, ed); err != nil {
		return nil, fmt.Errorf("restore editor: %w", err)
	}
	return ed, nil
}

func (ctrl *Controller) storeEditor(ctx context.Context, c tele.Context, action model.ChatAction, companyID uuid.UUID, ed json.Marshaler) error {
	raw, err := ed.MarshalJSON()
	if err != nil {
		return fmt.Errorf("persist editor: %w", err)
	}

	return ctrl.session.SetChatSession(ctx, chatKey(c), model.ChatSession{
		Action:    action,
		CompanyID: companyID,
		Editor:    raw,
	})
}

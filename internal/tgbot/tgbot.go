package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/tg/tgCallback"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/transport/telegram"
	customMW "github.com/KotFed0t/vc_portfolio_dashboard/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot          *tele.Bot
	ctrl         *telegram.Controller
	allowedChats []int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) (*TGBot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
		OnError: func(err error, c tele.Context) {
			rqID, _ := c.Get("rqID").(string)
			slog.Error("telegram handler failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		return nil, err
	}

	if len(cfg.Telegram.AllowedChats) == 0 {
		slog.Warn("telegram allowlist is empty, every chat can use the bot")
	}

	return &TGBot{bot: b, ctrl: ctrl, allowedChats: cfg.Telegram.AllowedChats}, nil
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger(), customMW.AllowChats(b.allowedChats...))

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Start)
	b.bot.Handle("/summary", b.ctrl.Summary)
	b.bot.Handle("/companies", b.ctrl.Companies)
	b.bot.Handle("/company", b.ctrl.Company)
	b.bot.Handle("/edit", b.ctrl.EditCompany)
	b.bot.Handle("/metrics", b.ctrl.EditMetrics)
	b.bot.Handle("/save", b.ctrl.Save)
	b.bot.Handle("/cancel", b.ctrl.Cancel)
	b.bot.Handle("/report", b.ctrl.Report)

	b.bot.Handle("\f"+tgCallback.Summary, b.ctrl.Summary)
	b.bot.Handle("\f"+tgCallback.Companies, b.ctrl.Companies)
	b.bot.Handle("\f"+tgCallback.Company, b.ctrl.Company)
	b.bot.Handle("\f"+tgCallback.EditCompany, b.ctrl.EditCompany)
	b.bot.Handle("\f"+tgCallback.EditMetrics, b.ctrl.EditMetrics)
	b.bot.Handle("\f"+tgCallback.SaveDraft, b.ctrl.Save)
	b.bot.Handle("\f"+tgCallback.CancelDraft, b.ctrl.Cancel)
	b.bot.Handle("\f"+tgCallback.ExportReport, b.ctrl.Report)

	b.bot.Handle(tele.OnText, b.ctrl.OnText)
}

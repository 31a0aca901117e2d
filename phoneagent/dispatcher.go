package phoneagent

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spance/iphone-use-mcp/constants"
	"github.com/spance/iphone-use-mcp/phoneagent/capture"
	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/helper"
	"github.com/spance/iphone-use-mcp/phoneagent/monitoring"
	"github.com/spance/iphone-use-mcp/utils"
)

// Dispatcher maps named actions to session operations. Every call returns an
// Envelope; failures are reported as text content, never as Go errors.
type Dispatcher struct {
	Sessions SessionProvider
	Metrics  *monitoring.Metrics
}

func NewDispatcher(sessions SessionProvider, metrics *monitoring.Metrics) *Dispatcher {
	return &Dispatcher{
		Sessions: sessions,
		Metrics:  metrics,
	}
}

// Actions lists the action names Execute understands.
func Actions() []string {
	return []string{
		constants.ToolClickElementByCoordinates,
		constants.ToolGetScreenSnapshot,
		constants.ToolGetAppList,
		constants.ToolOpenAppByBundleID,
		constants.ToolInputByKeyboard,
	}
}

// Execute runs one named action with its decoded arguments.
func (r *Dispatcher) Execute(ctx context.Context, action string, args helper.Args) (env *definitions.Envelope) {
	logger := log.With().Str("call_id", uuid.NewString()).Str("action", action).Logger()
	ctx = logger.WithContext(ctx)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Str("stack", string(debug.Stack())).Msg("action panicked")
			env = helper.CreateFailureEnvelope(fmt.Sprintf("%s failed, error: %v", action, p))
		}
		r.Metrics.RecordAction(action, env.Failed, time.Since(start))
		logger.Debug().Bool("failed", env.Failed).Dur("elapsed", time.Since(start)).Msg("action finished")
	}()

	logger.Debug().Str("args", utils.JsonString(args)).Msg("action called")

	switch action {
	case constants.ToolClickElementByCoordinates:
		return r.handleClick(ctx, args)
	case constants.ToolGetScreenSnapshot:
		return r.GetScreenSnapshot(ctx)
	case constants.ToolGetAppList:
		return r.GetAppList(ctx)
	case constants.ToolOpenAppByBundleID:
		return r.handleOpenApp(ctx, args)
	case constants.ToolInputByKeyboard:
		return r.handleInput(ctx, args)
	default:
		return helper.CreateFailureEnvelope(constants.Render(constants.MsgUnknownAction, map[string]string{
			"action": action,
		}))
	}
}

func (r *Dispatcher) fail(ctx context.Context, action string, err error, template string, values map[string]string) *definitions.Envelope {
	zerolog.Ctx(ctx).Error().Err(&definitions.ActionExecutionError{Action: action, Err: err}).Msg("action failed")
	values["error"] = err.Error()
	return helper.CreateFailureEnvelope(constants.Render(template, values))
}

func (r *Dispatcher) handleClick(ctx context.Context, args helper.Args) *definitions.Envelope {
	x, errX := helper.RequireNumber(args, "x")
	y, errY := helper.RequireNumber(args, "y")
	if errX != nil || errY != nil {
		err := errX
		if err == nil {
			err = errY
		}
		return r.fail(ctx, constants.ToolClickElementByCoordinates, err, constants.MsgClickFailed, map[string]string{
			"x": utils.AnyToDisplayString(args["x"]),
			"y": utils.AnyToDisplayString(args["y"]),
		})
	}
	return r.ClickElementByCoordinates(ctx, x, y)
}

// ClickElementByCoordinates taps at (x, y). Bounds are not checked here.
func (r *Dispatcher) ClickElementByCoordinates(ctx context.Context, x, y float64) *definitions.Envelope {
	values := map[string]string{"x": utils.FormatNumber(x), "y": utils.FormatNumber(y)}

	session, err := r.Sessions.GetSession(ctx)
	if err != nil {
		return r.fail(ctx, constants.ToolClickElementByCoordinates, err, constants.MsgClickFailed, values)
	}
	if err := session.Tap(ctx, x, y); err != nil {
		return r.fail(ctx, constants.ToolClickElementByCoordinates, err, constants.MsgClickFailed, values)
	}
	return helper.CreateTextEnvelope(constants.Render(constants.MsgClickSuccess, values))
}

// GetScreenSnapshot returns image, UI elements and screen size, in that order.
func (r *Dispatcher) GetScreenSnapshot(ctx context.Context) *definitions.Envelope {
	snapshot, err := r.takeSnapshot(ctx)
	if err == nil {
		var env *definitions.Envelope
		if env, err = helper.CreateSnapshotEnvelope(snapshot); err == nil {
			return env
		}
	}
	return r.fail(ctx, constants.ToolGetScreenSnapshot, err, constants.MsgSnapshotFailed, map[string]string{})
}

func (r *Dispatcher) takeSnapshot(ctx context.Context) (*definitions.ScreenSnapshot, error) {
	session, err := r.Sessions.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	shot, err := capture.CaptureScreen(ctx, session)
	if err != nil {
		return nil, err
	}
	r.Metrics.RecordCapture(shot.OriginalSize, len(shot.Data))

	uiElements, err := session.GetPageSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get page source: %w", err)
	}

	rect, err := session.GetWindowRect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get window rect: %w", err)
	}

	return &definitions.ScreenSnapshot{
		Base64PNG:  shot.Base64(),
		UIElements: uiElements,
		Size:       definitions.ScreenSize{Width: rect.Width, Height: rect.Height},
	}, nil
}

// GetAppList merges user and system apps. A category that cannot be listed
// counts as empty.
func (r *Dispatcher) GetAppList(ctx context.Context) *definitions.Envelope {
	session, err := r.Sessions.GetSession(ctx)
	if err != nil {
		return r.fail(ctx, constants.ToolGetAppList, err, constants.MsgAppListFailed, map[string]string{})
	}

	apps := make([]definitions.AppDescriptor, 0)
	for _, category := range definitions.AppCategories {
		list, err := session.ListApps(ctx, category)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(&definitions.PartialEnumerationError{Category: category, Err: err}).
				Msg("app category skipped")
			continue
		}
		apps = append(apps, helper.FormatAppList(list)...)
	}

	text, err := utils.ToJSON(apps)
	if err != nil {
		return r.fail(ctx, constants.ToolGetAppList, err, constants.MsgAppListFailed, map[string]string{})
	}
	return helper.CreateTextEnvelope(text)
}

func (r *Dispatcher) handleOpenApp(ctx context.Context, args helper.Args) *definitions.Envelope {
	app, err := helper.RequireString(args, "bundleId", false)
	if err != nil {
		return r.fail(ctx, constants.ToolOpenAppByBundleID, err, constants.MsgOpenAppFailed, map[string]string{
			"bundleId": utils.AnyToDisplayString(args["bundleId"]),
		})
	}
	return r.OpenAppByBundleID(ctx, app)
}

// OpenAppByBundleID foregrounds an app. Known app names resolve to their bundle id.
func (r *Dispatcher) OpenAppByBundleID(ctx context.Context, app string) *definitions.Envelope {
	bundleID := constants.ResolveBundleID(app)
	values := map[string]string{"bundleId": bundleID}

	session, err := r.Sessions.GetSession(ctx)
	if err != nil {
		return r.fail(ctx, constants.ToolOpenAppByBundleID, err, constants.MsgOpenAppFailed, values)
	}
	if err := session.ActivateApp(ctx, bundleID); err != nil {
		return r.fail(ctx, constants.ToolOpenAppByBundleID, err, constants.MsgOpenAppFailed, values)
	}
	return helper.CreateTextEnvelope(constants.Render(constants.MsgOpenAppSuccess, values))
}

func (r *Dispatcher) handleInput(ctx context.Context, args helper.Args) *definitions.Envelope {
	text, err := helper.RequireString(args, "text", true)
	if err != nil {
		return r.fail(ctx, constants.ToolInputByKeyboard, err, constants.MsgInputFailed, map[string]string{
			"text": utils.AnyToDisplayString(args["text"]),
		})
	}
	return r.InputByKeyboard(ctx, text)
}

// InputByKeyboard types text as one ordered key sequence, then releases input state.
func (r *Dispatcher) InputByKeyboard(ctx context.Context, text string) *definitions.Envelope {
	values := map[string]string{"text": text}

	session, err := r.Sessions.GetSession(ctx)
	if err != nil {
		return r.fail(ctx, constants.ToolInputByKeyboard, err, constants.MsgInputFailed, values)
	}
	if err := session.PerformKeyActions(ctx, helper.BuildKeyActions(text)); err != nil {
		return r.fail(ctx, constants.ToolInputByKeyboard, err, constants.MsgInputFailed, values)
	}
	if err := session.ReleaseActions(ctx); err != nil {
		return r.fail(ctx, constants.ToolInputByKeyboard, err, constants.MsgInputFailed, values)
	}
	return helper.CreateTextEnvelope(constants.Render(constants.MsgInputSuccess, values))
}

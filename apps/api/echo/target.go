package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmusoni/gradeplan/core/target"
)

type targetApi struct {
	svc *target.Service
}

func registerTargetAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *target.Service) {
	api := targetApi{svc: svc}

	tg := g.Group("/target", jwt)
	tg.POST("/enable", api.enable)
	tg.POST("/disable", api.disable)
	tg.GET("/sessions", api.querySessions)
}

// Handlers

func (api *targetApi) enable(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data target.EnableTarget
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnableTarget")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, alloc, err := api.svc.Enable(ownerID, data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, EnableTargetResponse{Session: sess, Allocation: alloc})
}

func (api *targetApi) disable(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data target.DisableTarget
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DisableTarget")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.Disable(ownerID, data)
	if err != nil {
		return errors.Wrap(err, "disabling target session")
	}

	return ctx.JSON(http.StatusOK, res)
}

func (api *targetApi) querySessions(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	sessions, err := api.svc.ActiveSessions(ownerID)
	if err != nil {
		return errors.Wrap(err, "querying active sessions")
	}
	if sessions == nil {
		sessions = []target.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

// EnableTargetResponse bundles the created session with the grade allocation
// that was applied to its courses.
type EnableTargetResponse struct {
	Session    target.Session    `json:"session"`
	Allocation target.Allocation `json:"allocation"`
}

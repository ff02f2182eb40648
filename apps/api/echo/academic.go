package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmusoni/gradeplan/core/academic"
)

type academicApi struct {
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *academic.Service) {
	api := academicApi{svc: svc}

	yg := g.Group("/years", jwt)
	yg.POST("", api.createYear)
	yg.GET("", api.queryYears)
	yg.DELETE("", api.destroyYears)
	yg.GET("/:id", api.retrieveYear)
	yg.PUT("/:id", api.updateYear)
	yg.DELETE("/:id", api.destroyYear)

	sg := g.Group("/semesters", jwt)
	sg.POST("", api.createSemester)
	sg.GET("", api.querySemesters)
	sg.DELETE("", api.destroySemesters)
	sg.GET("/:id", api.retrieveSemester)
	sg.PUT("/:id", api.updateSemester)
	sg.DELETE("/:id", api.destroySemester)
}

// Year handlers

func (api *academicApi) createYear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data academic.NewYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewYear")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	yr, err := api.svc.CreateYear(ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating year")
	}

	return ctx.JSON(http.StatusCreated, yr)
}

func (api *academicApi) queryYears(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	years, err := api.svc.QueryYears(ownerID, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying years")
	}
	if years == nil {
		years = []academic.Year{}
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *academicApi) retrieveYear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	yr, err := api.svc.GetYearByID(ownerID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding year by ID")
	}
	return ctx.JSON(http.StatusOK, yr)
}

func (api *academicApi) updateYear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data academic.UpdateYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateYear")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	yr, err := api.svc.UpdateYear(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating year")
	}

	return ctx.JSON(http.StatusOK, yr)
}

func (api *academicApi) destroyYear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteYears(ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting year")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) destroyYears(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteYears(ownerID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting years")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Semester handlers

func (api *academicApi) createSemester(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data academic.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sem, err := api.svc.CreateSemester(ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating semester")
	}

	return ctx.JSON(http.StatusCreated, sem)
}

func (api *academicApi) querySemesters(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	var semesters []academic.Semester
	if yearID := ctx.QueryParam("year"); yearID != "" {
		semesters, err = api.svc.QuerySemestersByYear(ownerID, yearID, ordering.Orderings...)
	} else {
		semesters, err = api.svc.QuerySemesters(ownerID, ordering.Orderings...)
	}
	if err != nil {
		return errors.Wrap(err, "querying semesters")
	}
	if semesters == nil {
		semesters = []academic.Semester{}
	}
	return ctx.JSON(http.StatusOK, semesters)
}

func (api *academicApi) retrieveSemester(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	sem, err := api.svc.GetSemesterByID(ownerID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding semester by ID")
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *academicApi) updateSemester(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data academic.UpdateSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSemester")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sem, err := api.svc.UpdateSemester(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating semester")
	}

	return ctx.JSON(http.StatusOK, sem)
}

func (api *academicApi) destroySemester(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteSemesters(ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) destroySemesters(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteSemesters(ownerID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting semesters")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/course"
)

var errSemesterParamRequired = errors.New("the `semester` query parameter is required")

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/simulate", api.simulate)
	cg.POST("/:id/categories", api.createCategory)

	g.GET("/semesters/:id/simulate", api.simulateSemester, jwt)

	ctg := g.Group("/categories", jwt)
	ctg.PUT("/:id", api.updateCategory)
	ctg.DELETE("/:id", api.destroyCategory)
	ctg.POST("/:id/assignments", api.createAssignment)

	ag := g.Group("/assignments", jwt)
	ag.PUT("/:id", api.updateAssignment)
	ag.DELETE("/:id", api.destroyAssignment)
	ag.PUT("/:id/grade", api.grade)
}

// Course handlers

func (api *courseApi) create(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}

	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	semesterID := ctx.QueryParam("semester")
	if semesterID == "" {
		return core.NewValidationError(errSemesterParamRequired)
	}

	courses, err := api.svc.QueryBySemester(ownerID, semesterID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	crs, err := api.svc.GetByID(ownerID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}

	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
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

	if err := api.svc.Delete(ownerID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) simulate(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	proj, err := api.svc.Simulate(ownerID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "simulating course")
	}
	return ctx.JSON(http.StatusOK, proj)
}

func (api *courseApi) simulateSemester(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	projections, err := api.svc.SimulateSemester(ownerID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "simulating semester")
	}
	if projections == nil {
		projections = []course.Projection{}
	}
	return ctx.JSON(http.StatusOK, projections)
}

// Category handlers

func (api *courseApi) createCategory(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}

	return ctx.JSON(http.StatusCreated, cat)
}

func (api *courseApi) updateCategory(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating category")
	}

	return ctx.JSON(http.StatusOK, cat)
}

func (api *courseApi) destroyCategory(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteCategories(ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignment handlers

func (api *courseApi) createAssignment(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.CreateAssignment(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}

	return ctx.JSON(http.StatusCreated, a)
}

func (api *courseApi) updateAssignment(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.UpdateAssignment(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}

	return ctx.JSON(http.StatusOK, a)
}

func (api *courseApi) grade(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data course.GradeAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Grade(ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading assignment")
	}

	return ctx.JSON(http.StatusOK, a)
}

func (api *courseApi) destroyAssignment(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteAssignments(ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

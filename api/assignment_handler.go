package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

func (a *API) registerAssignmentRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("assignments"))

	if err := g.POST("/assignments", a.assign,
		forge.WithSummary("Assign role"),
		forge.WithDescription("Assigns a role to a user at a store."),
		forge.WithOperationID("assignRole"),
		forge.WithRequestSchema(AssignRequest{}),
		forge.WithCreatedResponse(&Response{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/assignments/bulk", a.bulkAssign,
		forge.WithSummary("Bulk assign roles"),
		forge.WithDescription("Creates many assignments as one unit. A conflicting item rejects the whole batch."),
		forge.WithOperationID("bulkAssignRoles"),
		forge.WithRequestSchema(BulkAssignRequest{}),
		forge.WithCreatedResponse(&Response{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/assignments/:assignmentId", a.remove,
		forge.WithSummary("Remove assignment"),
		forge.WithDescription("Removes an assignment by ID, or by the (user, role, store) triple when the path segment is -."),
		forge.WithOperationID("removeAssignment"),
		forge.WithRequestSchema(RemoveAssignmentRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Removal result", &Response{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/assignments/:assignmentId/status", a.toggleStatus,
		forge.WithSummary("Toggle assignment status"),
		forge.WithDescription("Flips an assignment's activation flag."),
		forge.WithOperationID("toggleAssignmentStatus"),
		forge.WithRequestSchema(ToggleStatusRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Toggle result", &Response{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/stores/:storeId/assignments", a.listStoreAssignments,
		forge.WithSummary("List store assignments"),
		forge.WithOperationID("listStoreAssignments"),
		forge.WithRequestSchema(ListStoreAssignmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Assignment list", &Response{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/users/:userId/assignments", a.listUserAssignments,
		forge.WithSummary("List user assignments"),
		forge.WithOperationID("listUserAssignments"),
		forge.WithRequestSchema(ListUserAssignmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Assignment list", &Response{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) assign(ctx forge.Context, req *AssignRequest) (*Response, error) {
	if req.UserID == 0 || req.RoleID == 0 || req.StoreID == "" {
		return nil, forge.BadRequest("user_id, role_id, and store_id are required")
	}

	created, err := a.svc.Assign(callContext(ctx), &assignment.AssignRequest{
		UserID:  req.UserID,
		RoleID:  req.RoleID,
		StoreID: req.StoreID,
	})
	if err != nil {
		return fail(ctx, err)
	}

	resp := ok(AssignmentData{Assignment: created})
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) bulkAssign(ctx forge.Context, req *BulkAssignRequest) (*Response, error) {
	items := make([]assignment.AssignRequest, len(req.Items))
	for i, it := range req.Items {
		if it.UserID == 0 || it.RoleID == 0 || it.StoreID == "" {
			return nil, forge.BadRequest(fmt.Sprintf("item %d: user_id, role_id, and store_id are required", i))
		}
		items[i] = assignment.AssignRequest{
			UserID:  it.UserID,
			RoleID:  it.RoleID,
			StoreID: it.StoreID,
		}
	}

	created, err := a.svc.BulkAssign(callContext(ctx), &assignment.BulkAssignRequest{Items: items})
	if err != nil {
		return fail(ctx, err)
	}

	resp := ok(AssignmentListData{Assignments: created})
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) remove(ctx forge.Context, req *RemoveAssignmentRequest) (*Response, error) {
	target := assignment.RemoveRequest{
		UserID:  req.UserID,
		RoleID:  req.RoleID,
		StoreID: req.StoreID,
	}
	if p := ctx.Param("assignmentId"); p != "-" {
		assID, err := id.ParseAssignmentID(p)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid assignment ID: %v", err))
		}
		target.ID = assID
	} else if target.UserID == 0 || target.RoleID == 0 || target.StoreID == "" {
		return nil, forge.BadRequest("user_id, role_id, and store_id are required when no assignment ID is given")
	}

	if err := a.svc.Remove(callContext(ctx), &target); err != nil {
		return fail(ctx, err)
	}

	resp := ok(nil)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) toggleStatus(ctx forge.Context, req *ToggleStatusRequest) (*Response, error) {
	target := assignment.ToggleRequest{
		UserID:  req.UserID,
		RoleID:  req.RoleID,
		StoreID: req.StoreID,
	}
	if p := ctx.Param("assignmentId"); p != "-" {
		assID, err := id.ParseAssignmentID(p)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid assignment ID: %v", err))
		}
		target.ID = assID
	} else if target.UserID == 0 || target.RoleID == 0 || target.StoreID == "" {
		return nil, forge.BadRequest("user_id, role_id, and store_id are required when no assignment ID is given")
	}

	if err := a.svc.ToggleStatus(callContext(ctx), &target); err != nil {
		return fail(ctx, err)
	}

	resp := ok(nil)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listStoreAssignments(ctx forge.Context, req *ListStoreAssignmentsRequest) (*Response, error) {
	storeID := ctx.Param("storeId")
	if storeID == "" {
		return nil, forge.BadRequest("storeId is required")
	}

	list, err := a.svc.ListByStore(ctx.Context(), storeID, &assignment.ListParams{
		IsActive: req.IsActive,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	})
	if err != nil {
		return fail(ctx, err)
	}

	resp := ok(AssignmentListData{Assignments: list})
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listUserAssignments(ctx forge.Context, req *ListUserAssignmentsRequest) (*Response, error) {
	userID, err := strconv.ParseInt(ctx.Param("userId"), 10, 64)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	list, err := a.svc.ListByUser(ctx.Context(), userID, &assignment.ListParams{
		IsActive: req.IsActive,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	})
	if err != nil {
		return fail(ctx, err)
	}

	resp := ok(AssignmentListData{Assignments: list})
	return resp, ctx.JSON(http.StatusOK, resp)
}

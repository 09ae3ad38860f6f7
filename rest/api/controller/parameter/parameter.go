package parameter

import (
	"fmt"
	"time"

	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/rest/api"
	"github.com/gofrs/uuid"
)

func GetParamShareholderID(ctx api.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(ctx.Params().Get("shareholder_id"))
	if err != nil {
		return uuid.Nil, grerrors.InvalidRequestParam.WithMsg("shareholder_id is invalid format")
	}

	return id, nil
}

func GetParamAdminID(ctx api.Context) (adminID uuid.UUID, err error) {
	if ctx.Session().Permission != api.PermissionAdmin {
		return ctx.Session().ID, fmt.Errorf("non administrator permission level")
	}

	adminID, err = uuid.FromString(ctx.Values().Get("admin_id").(string))
	if err != nil {
		return adminID, grerrors.InvalidRequestParam
	}

	if !ctx.Session().Authorized(adminID) {
		return adminID, grerrors.NotFound
	}

	return adminID, nil
}

func GetParamWorkflowID(ctx api.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(ctx.Params().Get("workflow_id"))
	if err != nil {
		return uuid.Nil, grerrors.InvalidRequestParam.WithMsg("workflow_id is invalid format")
	}

	return id, nil
}

func GetParamResolutionID(ctx api.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(ctx.Params().Get("resolution_id"))
	if err != nil {
		return uuid.Nil, grerrors.InvalidRequestParam.WithMsg("resolution_id is invalid format")
	}

	return id, nil
}

// GetClass resolves the {class} route parameter against the class
// cache, so unknown classes 404 before any query runs.
func GetClass(ctx api.Context) (*models.ShareClass, error) {
	classKey := ctx.Params().Get("class")
	if classKey == "" {
		return nil, grerrors.InvalidRequestParam.WithMsg(
			"class is required")
	}

	class := ctx.Services().ClassCache().Get(enum.ShareClass(classKey))

	if class == nil {
		return nil, grerrors.NotFound.WithMsg(
			fmt.Sprintf("share class not found for %v", classKey))
	}

	return class, nil
}

func ParseTimestamp(tStr, fieldName string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, tStr)
	if err != nil {
		t, err = time.Parse("2006-01-02", tStr)
		if err != nil {
			return nil, grerrors.InvalidRequestParam.WithMsg(
				fmt.Sprintf("%v is invalid format. please format timestamp with YYYY-MM-DD or ISO8601 like: '2006-01-02T15:04:05Z'", fieldName))
		}
	}

	return &t, nil
}

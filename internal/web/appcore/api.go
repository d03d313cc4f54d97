package appcore

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"situs/framework"
)

const (
	getOGsFailureMessage         = "Failed to fetch OGs"
	updateDatabaseFailureMessage = "Failed to update database"
	updateDatabaseSuccessMessage = "Database updated successfully"
)

// GetOGs returns every indexed row verbatim.
func GetOGs(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) framework.APIResult {
	service, err := situsService(appCtx)
	if err != nil {
		return framework.Fail(getOGsFailureMessage, err)
	}

	result, err := service.AllOGs(ctx)
	if err != nil {
		return framework.Fail(getOGsFailureMessage, err)
	}

	rows := result.Rows
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return framework.OK(rows)
}

func UpdateDatabase(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	_ framework.EmptyParams,
) framework.APIResult {
	if !authorizedForUpdate(appCtx, r) {
		return framework.FailWithStatus(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized), nil)
	}

	service, err := situsService(appCtx)
	if err != nil {
		return framework.Fail(updateDatabaseFailureMessage, err)
	}

	if err := service.UpdateDatabase(ctx); err != nil {
		return framework.Fail(updateDatabaseFailureMessage, err)
	}

	return framework.OK(framework.MessageBody{Message: updateDatabaseSuccessMessage})
}

func authorizedForUpdate(appCtx *Context, r *http.Request) bool {
	if appCtx == nil || appCtx.updateToken == "" {
		return true
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(appCtx.updateToken)) == 1
}

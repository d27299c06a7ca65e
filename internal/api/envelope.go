package api

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
	"github.com/MohammadRstm/BookApp/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the response
// envelope. Errors become {"success":false,"error","code","details"}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil

	case *APIError:
		return response.Fail(domainerrors.Code(body.Code), body.Message, body.Details), nil

	case *domainerrors.Error:
		if body.HTTPStatus() >= http.StatusInternalServerError {
			return response.Fail(domainerrors.CodeInternal, genericServerError, nil), nil
		}
		return response.Fail(body.Code, body.Message, body.Details), nil

	case error:
		code, _ := strconv.Atoi(status)
		if code >= http.StatusInternalServerError || code == 0 {
			return response.Fail(domainerrors.CodeInternal, genericServerError, nil), nil
		}
		return response.Fail(domainerrors.CodeForStatus(code), body.Error(), nil), nil
	}

	return response.Ok(v), nil
}

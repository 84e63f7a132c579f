package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lababa/lababa/internal/service"
)

// listBody 列表接口 POST 请求体里的过滤条件，出现的字段覆盖查询串。
type listBody struct {
	UserID *string `json:"userId"`
	Start  *int64  `json:"start"`
	End    *int64  `json:"end"`
	Offset *int    `json:"offset"`
	Limit  *int    `json:"limit"`
}

// parseRecordQuery 合并查询串与请求体（请求体优先）；userId 缺省时取当前登录用户。
func parseRecordQuery(r *http.Request) (service.RecordQuery, error) {
	var q service.RecordQuery
	values := r.URL.Query()
	q.UserID = strings.TrimSpace(values.Get("userId"))

	var err error
	if q.Start, err = optionalInt64(values.Get("start")); err != nil {
		return q, err
	}
	if q.End, err = optionalInt64(values.Get("end")); err != nil {
		return q, err
	}
	if q.Offset, err = optionalInt(values.Get("offset")); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(values.Get("limit")); err != nil {
		return q, err
	}

	if r.Method == http.MethodPost {
		var body listBody
		if err := decodeBody(r, &body); err != nil {
			return q, err
		}
		if body.UserID != nil {
			q.UserID = strings.TrimSpace(*body.UserID)
		}
		if body.Start != nil {
			q.Start = body.Start
		}
		if body.End != nil {
			q.End = body.End
		}
		if body.Offset != nil {
			q.Offset = *body.Offset
		}
		if body.Limit != nil {
			q.Limit = *body.Limit
		}
	}

	if q.UserID == "" {
		q.UserID = currentUser(r)
	}
	return q, nil
}

func optionalInt64(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Join(service.ErrInvalidArgument, err)
	}
	return &v, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(service.ErrInvalidArgument, err)
	}
	return v, nil
}

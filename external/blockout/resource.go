package blockout

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func isAbsent(resp response) bool {
	body := bytes.TrimSpace(resp.body)
	return resp.noContent() || len(body) == 0 || bytes.Equal(body, []byte("null"))
}

func findOne[D any](ctx context.Context, r *resource, op, path string, query url.Values) (D, bool, error) {
	var zero D
	resp, err := r.get(ctx, op, path, query)
	if err != nil {
		return zero, false, err
	}
	if isAbsent(resp) {
		return zero, false, nil
	}
	out, err := decode[D](op, resp)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func findMany[D any](ctx context.Context, r *resource, op, path string, query url.Values) ([]D, error) {
	resp, err := r.get(ctx, op, path, query)
	if err != nil {
		return nil, err
	}
	if isAbsent(resp) {
		return nil, nil
	}
	return decode[[]D](op, resp)
}

func create[D any](ctx context.Context, r *resource, op string, payload D) (D, error) {
	var zero D
	resp, err := r.send(ctx, op, http.MethodPost, "", payload)
	if err != nil {
		return zero, err
	}
	if isAbsent(resp) {
		return zero, fmt.Errorf("%s: record store returned no created record", op)
	}
	return decode[D](op, resp)
}

// replace sends the full record; a bodiless reply echoes the payload.
func replace[D any](ctx context.Context, r *resource, op string, id int64, payload D) (D, error) {
	resp, err := r.send(ctx, op, http.MethodPut, idPath(id), payload)
	if err != nil {
		return payload, err
	}
	if isAbsent(resp) {
		return payload, nil
	}
	return decode[D](op, resp)
}

func deactivate(ctx context.Context, r *resource, op string, id int64) error {
	_, err := r.send(ctx, op, http.MethodPut, idPath(id)+"/deactivate", nil)
	return err
}

func idPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}

func segment(value string) string {
	return "/" + url.PathEscape(value)
}

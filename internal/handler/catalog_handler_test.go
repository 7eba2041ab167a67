package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandlerCourses(t *testing.T) {
	r := newTestRouter(t)

	w, env := perform(t, r, http.MethodGet, "/catalog/courses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Análisis Numérico I","Sistemas Operativos","Algoritmos III"]`, string(env.Data))

	w, env = perform(t, r, http.MethodGet, "/catalog/courses?name=Algoritmos%20III", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["75.41"]`, string(env.Data))

	w, env = perform(t, r, http.MethodGet, "/catalog/courses?name=Algoritmos%20III&curriculum_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"75.41","curriculum_id":1}`, string(env.Data))

	w, _ = perform(t, r, http.MethodGet, "/catalog/courses?name=Algoritmos%20III&curriculum_id=9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = perform(t, r, http.MethodGet, "/catalog/courses?name=Algoritmos%20III&curriculum_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerPrerequisites(t *testing.T) {
	r := newTestRouter(t)

	w, env := perform(t, r, http.MethodGet, "/catalog/courses/75.41/prerequisites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["75.12","75.13"]`, string(env.Data))

	w, env = perform(t, r, http.MethodGet, "/catalog/courses/75.12/prerequisites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, env = perform(t, r, http.MethodGet, "/catalog/courses/99.99/prerequisites", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCatalogHandlerCurricula(t *testing.T) {
	r := newTestRouter(t)

	w, env := perform(t, r, http.MethodGet, "/catalog/curricula/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"INFORMATICA"}`, string(env.Data))

	w, _ = perform(t, r, http.MethodGet, "/catalog/curricula/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = perform(t, r, http.MethodGet, "/catalog/curricula", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"INFORMATICA"}]`, string(env.Data))
}

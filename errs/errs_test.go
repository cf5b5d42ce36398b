package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentErrorsClassify(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	fetch := NewFetchError("blog posts", cause)
	assert.True(t, IsFetchError(fetch))
	assert.Equal(t, http.StatusServiceUnavailable, fetch.StatusCode)
	assert.Contains(t, fetch.GetFullError(), "connection refused")

	upload := NewUploadError("flyer.png", cause)
	assert.True(t, IsWriteError(upload))
	assert.True(t, IsUploadError(upload))

	busy := NewBusyError("blogs/abc")
	assert.True(t, IsBusy(busy))
	assert.True(t, IsConflict(busy))

	missing := NewRecordNotFoundError("Blog post", "/blog")
	assert.True(t, IsNotFound(missing))
	assert.Equal(t, "/blog", missing.Redirect)
}

func TestWithRedirectCopies(t *testing.T) {
	base := NewNotFoundError("page")
	redirected := base.WithRedirect("/")

	assert.Empty(t, base.Redirect)
	assert.Equal(t, "/", redirected.Redirect)
	assert.True(t, IsNotFound(redirected))
}

func TestNestedFullError(t *testing.T) {
	inner := NewDatabaseError("insert into", "programs", StoreDuplicate, errors.New("duplicate key value"))
	outer := NewWriteError("create", "program", inner)

	assert.Equal(t, http.StatusConflict, inner.StatusCode)
	assert.Contains(t, outer.GetFullError(), "->")
	assert.Contains(t, outer.GetFullError(), "duplicate key value")
}

func TestAuthErrorDefaults(t *testing.T) {
	err := NewAuthError("")
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "check your credentials")
	assert.True(t, IsMissingTokenError(NewMissingTokenError()))
	assert.Equal(t, "/adminlogin", NewInvalidTokenError().Redirect)
}

func TestDatabaseErrorClasses(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, http.StatusInternalServerError, NewDatabaseError("list", "blogs", StoreQueryFailed, cause).StatusCode)

	down := NewDatabaseError("list", "blogs", StoreUnavailable, cause)
	assert.Equal(t, http.StatusServiceUnavailable, down.StatusCode)
	assert.True(t, IsStoreUnavailable(down))

	slow := NewDatabaseError("get", "blogs/1", StoreTimeout, cause)
	assert.Equal(t, http.StatusGatewayTimeout, slow.StatusCode)
	assert.True(t, IsStoreUnavailable(slow))
	assert.ErrorIs(t, slow, ErrStoreTimeout)
}

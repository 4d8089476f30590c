package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(Forbidden, "no entitlement")
	assert.Equal(t, Forbidden, KindOf(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, Forbidden, KindOf(wrapped))

	assert.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestMessageHidesUnclassifiedDetail(t *testing.T) {
	raw := errors.New(`pq: insert or update on table "order_items" violates foreign key constraint`)
	assert.Equal(t, "Internal Server Error", Message(raw))

	classified := Wrap(Integrity, "one or more items in your cart are no longer available", raw)
	assert.Equal(t, "one or more items in your cart are no longer available", Message(classified))

	// The cause stays reachable for server-side logging.
	assert.ErrorIs(t, classified, raw)
}

func TestIsKind(t *testing.T) {
	err := Wrap(Unavailable, "could not generate download link", errors.New("presign: 403"))
	assert.True(t, IsKind(err, Unavailable))
	assert.False(t, IsKind(err, NotFound))
	assert.False(t, IsKind(nil, Internal))
}

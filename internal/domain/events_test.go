package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-gaucho/internal/domain"
)

func TestRecordAppendedIdempotencyKey(t *testing.T) {
	a := domain.RecordAppendedIdempotencyKey(domain.RecordRef{Category: domain.CategoryMate, Index: 1})
	b := domain.RecordAppendedIdempotencyKey(domain.RecordRef{Category: domain.CategoryMate, Index: 1})
	c := domain.RecordAppendedIdempotencyKey(domain.RecordRef{Category: domain.CategoryMate, Index: 2})
	d := domain.RecordAppendedIdempotencyKey(domain.RecordRef{Category: domain.CategorySteak, Index: 1})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 64)
}

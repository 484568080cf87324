package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenAt(t *testing.T) {
	r := &Restaurant{
		Hours: OpeningHours{
			time.Monday: {OpenMinute: 9 * 60, CloseMinute: 22 * 60},
		},
	}

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // a Monday
	assert.True(t, r.OpenAt(monday.Add(12*time.Hour)), "noon Monday")
	assert.False(t, r.OpenAt(monday.Add(8*time.Hour)), "before opening")
	assert.False(t, r.OpenAt(monday.Add(23*time.Hour)), "after closing")
	assert.False(t, r.OpenAt(monday.Add(36*time.Hour)), "closed on Tuesday")
}

func TestOpenAtOvernight(t *testing.T) {
	r := &Restaurant{
		Hours: OpeningHours{
			time.Friday: {OpenMinute: 18 * 60, CloseMinute: 2 * 60}, // 6pm to 2am
		},
	}

	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) // a Friday
	assert.True(t, r.OpenAt(friday.Add(23*time.Hour)), "11pm Friday")
	assert.True(t, r.OpenAt(friday.Add(1*time.Hour)), "1am Friday morning")
	assert.False(t, r.OpenAt(friday.Add(12*time.Hour)), "noon Friday")
}

func TestOpenAtNoHours(t *testing.T) {
	r := &Restaurant{}
	assert.True(t, r.OpenAt(time.Now()), "no recorded hours means always open")
}

func TestEmbeddingText(t *testing.T) {
	item := &MenuItem{Name: "Pad Thai", Description: "Rice noodles with peanuts."}
	assert.Equal(t, "Pad Thai. Rice noodles with peanuts.", item.EmbeddingText())

	bare := &MenuItem{Name: "Pad Thai"}
	assert.Equal(t, "Pad Thai", bare.EmbeddingText())
}

//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides random data generation utilities.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
// A zero seed behaves like NewFaker.
func NewFakerWithSeed(seed uint64) *Faker {
	if seed == 0 {
		return NewFaker()
	}
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// WholeFloat draws an integer between min and max (inclusive) and returns it
// as a float64.
func (f *Faker) WholeFloat(min, max int) float64 {
	return float64(f.Int(min, max))
}

// PowerOfTwo returns 2^n for n drawn from [0, maxExp].
func (f *Faker) PowerOfTwo(maxExp int) int {
	return 1 << f.Int(0, maxExp)
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

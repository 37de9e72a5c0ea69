package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
)

// NewTask builds a T with fixed, valid task fields. UserID should always be
// given since it has to reference a stored user.
func NewTask[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	data := map[string]any{
		"Title":       "Tarea de prueba",
		"Description": "Descripción de la tarea",
		"Datetime":    time.Date(2021, time.April, 10, 14, 0, 0, 0, time.UTC),
		"Done":        false,
	}

	for _, custom := range customData {
		for key, value := range custom {
			data[key] = value
		}
	}

	return instance.Build(data)
}

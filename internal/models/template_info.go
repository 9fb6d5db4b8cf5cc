package models

import "time"

// TemplateInfo represents metadata about a stored template.
type TemplateInfo struct {
	ID           string    `json:"id" msgpack:"id"`
	Name         string    `json:"name" msgpack:"name"`
	Protocol     Protocol  `json:"protocol" msgpack:"protocol"`
	Width        float64   `json:"width" msgpack:"width"`
	Height       float64   `json:"height" msgpack:"height"`
	ElementCount int       `json:"elementCount" msgpack:"elementCount"`
	UpdatedAt    time.Time `json:"updatedAt" msgpack:"updatedAt"`
}

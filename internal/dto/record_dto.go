package dto

import "github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"

type BulkCollegesRequest struct {
	Colleges     []record.Pick `json:"colleges"`
	DeadlineType string        `json:"deadlineType"`
}

type DraftRequest struct {
	Prompt  int    `json:"prompt"`
	Content string `json:"content"`
}

type ImportResponse struct {
	Message string         `json:"message"`
	Fields  []record.Field `json:"fields"`
}

package api

import "survey-analyst/internal/common/validation"

var runRequestSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "RunRequest",
  "type": "object",
  "required": ["message"],
  "properties": {
    "message":    {"type": "string", "minLength": 1, "pattern": "\\S"},
    "user_id":    {"type": "string", "maxLength": 128},
    "session_id": {"type": "string", "maxLength": 128}
  },
  "additionalProperties": false
}`)

var questionRequestSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "QuestionRequest",
  "type": "object",
  "required": ["question"],
  "properties": {
    "question": {"type": "string", "minLength": 1, "pattern": "\\S"}
  },
  "additionalProperties": false
}`)

type questionRequest struct {
	Question string `json:"question"`
}

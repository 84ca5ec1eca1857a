package logger

import "go.uber.org/zap"

const (
	FieldEvaluationID = "evaluation_id"
	FieldJD           = "jd"
	FieldResume       = "resume"
)

// EvaluationFields identifies one screening evaluation in log entries.
func EvaluationFields(id, jd, resume string) []zap.Field {
	return StringFields(
		StringField{Key: FieldEvaluationID, Value: id},
		StringField{Key: FieldJD, Value: jd},
		StringField{Key: FieldResume, Value: resume},
	)
}

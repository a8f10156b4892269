package auditerrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrAuditNotFound           = apperror.NotFound("audit")
	ErrInvalidFactoryID        = apperror.InvalidReference("factory_id")
	ErrInvalidLeadAuditor      = apperror.InvalidReference("lead_auditor_id")
	ErrInvalidAuditorIDs       = apperror.InvalidReference("auditor_ids")
	ErrInvalidWitnessIDs       = apperror.InvalidReference("witness_ids")
	ErrInvalidScheduledDate    = apperror.Validation("scheduled_date", "date")
	ErrScoreRequired           = apperror.RequiredField("score")
	ErrScoreOutOfRange         = apperror.Validation("score", "range 0-100")
	ErrSummaryRequired         = apperror.RequiredField("summary")
	ErrRecommendationsRequired = apperror.RequiredField("recommendations")
)

package game

import (
	"fmt"
	"time"
)

// Finding is one agent's reported issue in the target source tree.
type Finding struct {
	ID       int64
	GameID   string
	AgentID  string
	Round    int
	FilePath string
	LineStart int
	LineEnd   int

	Description string
	Evidence    string
	PatternHash string

	Status      FindingStatus
	DuplicateOf *int64

	RefereeVerdict   string
	Confidence       Confidence
	ConfidenceScore  *int
	PointsAwarded    int

	VerificationStatus  VerificationStatus
	VerifierExplanation string

	IssueType       string
	ImpactTier      string
	RejectionReason string

	CreatedAt time.Time
}

// NewFinding validates submission-time constraints and constructs a fresh,
// Pending finding. The caller (repo.Finding.Create) assigns ID and
// PatternHash before persisting.
func NewFinding(gameID, agentID string, round int, filePath string, lineStart, lineEnd int, description, evidence string, now time.Time) (*Finding, error) {
	if lineEnd < lineStart {
		return nil, fmt.Errorf("%w: line end %d before line start %d", ErrInvalidPrecondition, lineEnd, lineStart)
	}
	if filePath == "" {
		return nil, fmt.Errorf("%w: file path required", ErrInvalidPrecondition)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidPrecondition)
	}
	return &Finding{
		GameID:             gameID,
		AgentID:            agentID,
		Round:              round,
		FilePath:           filePath,
		LineStart:          lineStart,
		LineEnd:            lineEnd,
		Description:        description,
		Evidence:           evidence,
		Status:             FindingPending,
		VerificationStatus: VerificationNone,
		CreatedAt:          now,
	}, nil
}

// IsValid reports whether the finding currently stands as Valid.
func (f *Finding) IsValid() bool {
	return f.Status == FindingValid
}

// Validate transitions Pending -> Valid. If needsVerification, points are
// withheld and VerificationStatus becomes Pending; otherwise the finder is
// immediately awarded PointsValidFinding and VerificationStatus stays None.
// Returns the points this call awards (0 when verification is pending).
func (f *Finding) Validate(verdict string, confidence Confidence, confidenceScore *int, issueType, impactTier string, needsVerification bool) (int, error) {
	if f.Status != FindingPending {
		return 0, fmt.Errorf("%w: finding %d is %s, not pending", ErrInvalidState, f.ID, f.Status)
	}
	f.Status = FindingValid
	f.RefereeVerdict = verdict
	f.Confidence = confidence
	f.ConfidenceScore = confidenceScore
	f.IssueType = issueType
	f.ImpactTier = impactTier

	if needsVerification {
		f.VerificationStatus = VerificationPending
		f.PointsAwarded = 0
		return 0, nil
	}
	f.VerificationStatus = VerificationNone
	f.PointsAwarded = PointsValidFinding
	return PointsValidFinding, nil
}

// MarkFalse transitions Pending -> FalseFlag directly (the referee judged it
// a false positive, not a revoked valid finding).
func (f *Finding) MarkFalse(verdict string) (int, error) {
	if f.Status != FindingPending {
		return 0, fmt.Errorf("%w: finding %d is %s, not pending", ErrInvalidState, f.ID, f.Status)
	}
	f.Status = FindingFalse
	f.RefereeVerdict = verdict
	f.VerificationStatus = VerificationNone
	f.PointsAwarded = PointsFalseFlag
	return PointsFalseFlag, nil
}

// MarkDuplicate transitions Pending -> Duplicate, recording the id of the
// earlier finding it duplicates.
func (f *Finding) MarkDuplicate(verdict string, duplicateOfID int64) (int, error) {
	if f.Status != FindingPending {
		return 0, fmt.Errorf("%w: finding %d is %s, not pending", ErrInvalidState, f.ID, f.Status)
	}
	f.Status = FindingDuplicate
	f.RefereeVerdict = verdict
	f.DuplicateOf = &duplicateOfID
	f.VerificationStatus = VerificationNone
	f.PointsAwarded = PointsDuplicate
	return PointsDuplicate, nil
}

// RevokeValidation transitions Valid -> FalseFlag via a successful dispute,
// rolling the finding's own points to the false-flag value and explicitly
// clearing VerificationStatus so a previously-pending verifier pass can
// never subsequently resolve it.
func (f *Finding) RevokeValidation(verdict string) error {
	if f.Status != FindingValid {
		return fmt.Errorf("%w: finding %d is %s, not valid", ErrInvalidState, f.ID, f.Status)
	}
	f.Status = FindingFalse
	f.RefereeVerdict = verdict
	f.PointsAwarded = PointsFalseFlag
	f.VerificationStatus = VerificationNone
	return nil
}

// ApplyVerification resolves a Pending verification. On confirm, the
// finding keeps FindingValid status and is awarded PointsValidFinding
// (withheld until now). On reject, it transitions to FalseFlag with
// PointsFalseFlag, optionally recording an overridden issue type and a
// rejection reason. Returns the points this call awards.
func (f *Finding) ApplyVerification(confirmed bool, explanation, overriddenType, rejectionReason string) (int, error) {
	if f.VerificationStatus != VerificationPending {
		return 0, fmt.Errorf("%w: finding %d verification status is %s, not pending", ErrInvalidState, f.ID, f.VerificationStatus)
	}
	f.VerifierExplanation = explanation

	if confirmed {
		f.VerificationStatus = VerificationConfirmed
		f.PointsAwarded = PointsValidFinding
		return PointsValidFinding, nil
	}

	f.Status = FindingFalse
	f.VerificationStatus = VerificationOverridden
	f.PointsAwarded = PointsFalseFlag
	if overriddenType != "" {
		f.IssueType = overriddenType
	}
	f.RejectionReason = rejectionReason
	return PointsFalseFlag, nil
}

package resumes

import "context"

// Repo defines persistence operations for resumes and their parse records.
type Repo interface {
	CreateResume(ctx context.Context, resume Resume) error
	GetResume(ctx context.Context, resumeID string) (Resume, error)
	ListResumesByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	UpdateResumeStatus(ctx context.Context, resumeID, status, errorMessage string) error

	// AppendParse assigns the next version for the record's resume and
	// inserts it. Implementations must serialize appends per resume so
	// version sequences stay gapless.
	AppendParse(ctx context.Context, record ParseRecord) (ParseRecord, error)
	LatestParse(ctx context.Context, resumeID string) (ParseRecord, error)
	ListParses(ctx context.Context, resumeID string) ([]ParseRecord, error)
}

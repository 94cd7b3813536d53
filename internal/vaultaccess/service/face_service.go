package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/imagestore"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

var ErrInvalidImage = errors.New("image payload is required")

// FaceComparer is the external comparison boundary: a black-box call
// that says whether the submitted image matches the reference.
type FaceComparer interface {
	Compare(ctx context.Context, imageURL, imageID string) (bool, error)
}

// FaceService coordinates the per-record match workflow:
//
//	PENDING -> MATCHED | NOT_MATCHED | FAILED
//
// The PENDING record is durable before the external call is made, so a
// crash mid-flight leaves an observable stuck record for the sweeper
// instead of a silent loss. A record transitions at most once; late or
// duplicate verdicts are ignored by the store's conditional update.
type FaceService struct {
	faces    store.FaceStore
	images   imagestore.Store
	comparer FaceComparer
	alerts   *AlertService
	logger   *log.Logger
}

func NewFaceService(fs store.FaceStore, images imagestore.Store, comparer FaceComparer, alerts *AlertService, logger *log.Logger) *FaceService {
	return &FaceService{faces: fs, images: images, comparer: comparer, alerts: alerts, logger: logger}
}

// SubmitComparison runs one image through the full workflow and
// returns the record in its terminal state. The comparison call runs
// on a context detached from the caller: an abandoned request (client
// disconnect) does not stop the state transition from committing. The
// call itself is bounded by the comparer's own timeout.
func (s *FaceService) SubmitComparison(ctx context.Context, image io.Reader) (types.FaceRecord, error) {
	if image == nil {
		return types.FaceRecord{}, ErrInvalidImage
	}

	id := uuid.NewString()
	imageURL, err := s.images.Put(ctx, imagestore.ComparisonKey(id), image)
	if err != nil {
		return types.FaceRecord{}, err
	}

	// Snapshot the reference URI that is current right now; the slot
	// may be overwritten while this record is in flight.
	refURL := s.images.URL(imagestore.ReferenceKey)

	rec := store.FaceRecord{
		ID:                 id,
		ReferenceImageRef:  &refURL,
		ComparisonImageRef: imageURL,
		MatchState:         types.MatchPending,
		SubmittedAt:        time.Now().UTC(),
	}
	if err := s.faces.Create(ctx, rec); err != nil {
		return types.FaceRecord{}, err
	}

	// From here on the workflow must finish even if the caller goes
	// away; only values, not cancellation, flow from ctx.
	detached := context.WithoutCancel(ctx)

	state := types.MatchFailed
	matched, cmpErr := s.comparer.Compare(detached, imageURL, id)
	switch {
	case cmpErr != nil:
		s.logger.Printf("face %s: comparison failed: %v", id, cmpErr)
	case matched:
		state = types.MatchMatched
	default:
		state = types.MatchNotMatched
	}

	applied, err := s.faces.Resolve(detached, id, state, time.Now().UTC())
	if err != nil {
		return types.FaceRecord{}, err
	}
	if !applied {
		// Already terminal — the sweeper beat us to it. Keep whatever
		// state was committed first.
		s.logger.Printf("face %s: verdict %s arrived after terminal state", id, state)
	}

	s.alerts.FaceCompared(detached)

	final, err := s.faces.Get(detached, id)
	if err != nil {
		return types.FaceRecord{}, err
	}
	return faceView(final), nil
}

// UpdateReference overwrites the singleton reference-image slot and
// returns its URL. In-flight PENDING comparisons keep the URI they
// snapshotted at submission; the slot itself is not versioned.
func (s *FaceService) UpdateReference(ctx context.Context, image io.Reader) (string, error) {
	if image == nil {
		return "", ErrInvalidImage
	}
	url, err := s.images.Put(ctx, imagestore.ReferenceKey, image)
	if err != nil {
		return "", err
	}
	s.alerts.ReferenceUpdated(ctx)
	return url, nil
}

// Faces returns all records, newest submissions first.
func (s *FaceService) Faces(ctx context.Context) ([]types.FaceRecord, error) {
	recs, err := s.faces.List(ctx)
	if err != nil {
		return nil, err
	}
	return faceViews(recs), nil
}

// Face returns one record by id.
func (s *FaceService) Face(ctx context.Context, id string) (types.FaceRecord, error) {
	rec, err := s.faces.Get(ctx, id)
	if err != nil {
		return types.FaceRecord{}, err
	}
	return faceView(rec), nil
}

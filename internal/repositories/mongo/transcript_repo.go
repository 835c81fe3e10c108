package mongo

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TranscriptCollection = "transcripts"

type TranscriptRepo struct {
	col *mongo.Collection
	log *logrus.Logger
}

func NewTranscriptRepo(db *mongo.Database, log *logrus.Logger) *TranscriptRepo {
	if log == nil {
		log = logrus.New()
	}
	return &TranscriptRepo{col: db.Collection(TranscriptCollection), log: log}
}

// Write upserts the transcript keyed by baseName and returns its mongo location.
func (r *TranscriptRepo) Write(ctx context.Context, baseName string, t *models.Transcript) (string, error) {
	const op = "MongoTranscriptRepo.Write"

	doc := *t
	doc.Filename = baseName
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"filename": baseName},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to upsert transcript", utils.Kind(utils.ErrStorage, err))
	}
	return r.col.Database().Name() + "." + TranscriptCollection + "/" + baseName, nil
}

func (r *TranscriptRepo) LoadAll(ctx context.Context) ([]models.Transcript, error) {
	const op = "MongoTranscriptRepo.LoadAll"

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcripts", utils.Kind(utils.ErrStorage, err))
	}
	defer cur.Close(ctx)

	var out []models.Transcript
	for cur.Next(ctx) {
		var t models.Transcript
		if err := cur.Decode(&t); err != nil {
			r.log.WithError(err).WithField("id", cur.Current.Lookup("_id").String()).Warn("skipping undecodable transcript")
			continue
		}
		out = append(out, t)
	}
	if err := cur.Err(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to iterate transcripts", utils.Kind(utils.ErrStorage, err))
	}
	return out, nil
}

func (r *TranscriptRepo) Get(ctx context.Context, baseName string) (*models.Transcript, error) {
	const op = "MongoTranscriptRepo.Get"

	var t models.Transcript
	err := r.col.FindOne(ctx, bson.M{"filename": baseName}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.E(utils.CodeNotFound, op, "transcript not found", utils.ErrNotFound)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get transcript", utils.Kind(utils.ErrStorage, err))
	}
	return &t, nil
}

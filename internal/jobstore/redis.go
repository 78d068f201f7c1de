package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blackbeanteam/lease-analysis-back/internal/common"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

const hashPrefix = "lease:job:"

// RedisStore keeps one hash per job under lease:job:<id> with a uniform TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func hashKey(jobID string) string {
	return hashPrefix + jobID
}

func (s *RedisStore) Create(ctx context.Context, j *job.Job) (string, error) {
	if j.ID == "" {
		j.ID = newJobID()
	}
	j.Status = job.StatusQueued
	j.CreatedAt = time.Now()

	fields := map[string]any{
		"job_id":     j.ID,
		"filename":   j.Filename,
		"b64":        j.ContentB64,
		"debug":      boolField(j.Debug),
		"status":     string(j.Status),
		"created_at": j.CreatedAt.Unix(),
	}
	if j.BlobPathname != "" {
		fields["blob_pathname"] = j.BlobPathname
		fields["size"] = j.Size
	}
	if j.Jurisdiction != nil {
		raw, err := json.Marshal(j.Jurisdiction)
		if err != nil {
			return "", common.WrapStoreUnavailable("marshal jurisdiction", err)
		}
		fields["jurisdiction"] = string(raw)
	}

	hk := hashKey(j.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hk, fields)
	pipe.Expire(ctx, hk, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", common.WrapStoreUnavailable("create job record", err)
	}

	slog.Info("job record created", "job_id", j.ID, "filename", j.Filename, "ttl", s.ttl)
	return j.ID, nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*job.Job, error) {
	data, err := s.client.HGetAll(ctx, hashKey(jobID)).Result()
	if err != nil {
		return nil, common.WrapStoreUnavailable("get job record", err)
	}
	if len(data) == 0 {
		return nil, common.ErrJobNotFound
	}
	return recordFromHash(jobID, data), nil
}

// mutableStatus reads the current status and reports whether the record may
// still transition: false for expired or missing records and for records
// already in a terminal state. Terminal states are sticky.
func (s *RedisStore) mutableStatus(ctx context.Context, jobID string) (bool, error) {
	cur, err := s.client.HGet(ctx, hashKey(jobID), "status").Result()
	if errors.Is(err, redis.Nil) {
		slog.Warn("mutation on missing job record", "job_id", jobID)
		return false, nil
	}
	if err != nil {
		return false, common.WrapStoreUnavailable("read job status", err)
	}
	return !job.Status(cur).Terminal(), nil
}

func (s *RedisStore) SetStatus(ctx context.Context, jobID string, status job.Status, message string) error {
	ok, err := s.mutableStatus(ctx, jobID)
	if err != nil || !ok {
		return err
	}

	fields := map[string]any{"status": string(status)}
	if message != "" {
		fields["message"] = message
	}
	hk := hashKey(jobID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hk, fields)
	// The record can expire between the status read and the write; HSet would
	// then recreate the hash without a TTL. ExpireNX re-arms it in that case
	// and leaves the original deadline alone otherwise.
	pipe.ExpireNX(ctx, hk, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return common.WrapStoreUnavailable("set job status", err)
	}
	slog.Info("job status updated", "job_id", jobID, "status", status, "message", message)
	return nil
}

func (s *RedisStore) SaveResult(ctx context.Context, jobID string, result json.RawMessage) error {
	ok, err := s.mutableStatus(ctx, jobID)
	if err != nil || !ok {
		return err
	}

	hk := hashKey(jobID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hk, map[string]any{
		"status":      string(job.StatusDone),
		"result":      string(result),
		"finished_at": time.Now().Unix(),
	})
	// Success supersedes any earlier phase or error annotation.
	pipe.HDel(ctx, hk, "message")
	pipe.ExpireNX(ctx, hk, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return common.WrapStoreUnavailable("save job result", err)
	}
	slog.Info("job result saved", "job_id", jobID, "result_bytes", len(result))
	return nil
}

func (s *RedisStore) SaveError(ctx context.Context, jobID string, errMsg string) error {
	ok, err := s.mutableStatus(ctx, jobID)
	if err != nil || !ok {
		return err
	}

	hk := hashKey(jobID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hk, map[string]any{
		"status":      string(job.StatusError),
		"message":     errMsg,
		"finished_at": time.Now().Unix(),
	})
	pipe.ExpireNX(ctx, hk, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return common.WrapStoreUnavailable("save job error", err)
	}
	slog.Warn("job failed", "job_id", jobID, "error", errMsg)
	return nil
}

// Redis rejects bools; store them as 0/1 like any other flag field.
func boolField(b bool) int {
	if b {
		return 1
	}
	return 0
}

func recordFromHash(jobID string, data map[string]string) *job.Job {
	j := &job.Job{
		ID:           jobID,
		Filename:     data["filename"],
		ContentB64:   data["b64"],
		BlobPathname: data["blob_pathname"],
		Status:       job.Status(data["status"]),
		Message:      data["message"],
	}
	if v := data["size"]; v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			j.Size = n
		}
	}
	if v := data["debug"]; v != "" {
		j.Debug = v == "1" || v == "true"
	}
	if v := data["jurisdiction"]; v != "" {
		var jur job.Jurisdiction
		if err := json.Unmarshal([]byte(v), &jur); err == nil {
			j.Jurisdiction = &jur
		} else {
			slog.Warn("bad jurisdiction JSON in job record", "job_id", jobID, "error", err)
		}
	}
	if v := data["result"]; v != "" {
		j.Result = json.RawMessage(v)
	}
	if v := data["created_at"]; v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			j.CreatedAt = time.Unix(ts, 0)
		}
	}
	if v := data["finished_at"]; v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			j.FinishedAt = &t
		}
	}
	return j
}

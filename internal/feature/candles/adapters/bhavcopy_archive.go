package adapters

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/usecase"
	"industry_backend/internal/platform/blob"
)

// DefaultBhavcopyInbox は一括ファイルの受け入れフォルダ名です。
const DefaultBhavcopyInbox = "bhavcopy_inbox"

// bhavcopyInbox は受け入れフォルダ内のZIPとCSVを一括ファイルとして供給します。
type bhavcopyInbox struct {
	folder blob.Folder
}

var _ usecase.BhavcopySource = (*bhavcopyInbox)(nil)

// NewBhavcopySource は受け入れフォルダ上の BhavcopySource を生成します。
func NewBhavcopySource(folder blob.Folder) *bhavcopyInbox {
	return &bhavcopyInbox{folder: folder}
}

// Pending はフォルダ内の *.zip を展開し、*.csv はそのまま返します。
// 壊れたアーカイブはスキップされ、消費対象にも含めません。
func (s *bhavcopyInbox) Pending(ctx context.Context) (usecase.BhavcopyBatch, error) {
	objects, err := s.folder.List(ctx)
	if err != nil {
		return usecase.BhavcopyBatch{}, fmt.Errorf("list %s: %w", s.folder.Name(), err)
	}

	var batch usecase.BhavcopyBatch
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, s.folder.Name()+"/")
		ext := strings.ToLower(path.Ext(name))
		if ext != ".zip" && ext != ".csv" {
			continue
		}
		data, err := s.folder.Read(ctx, name)
		if err != nil {
			return usecase.BhavcopyBatch{}, fmt.Errorf("read %s: %w", obj.Key, err)
		}
		if ext == ".csv" {
			batch.Files = append(batch.Files, entity.BhavcopyFile{Name: path.Base(name), Data: data})
			batch.Archives = append(batch.Archives, name)
			continue
		}
		files, err := unzipMembers(data)
		if err != nil {
			slog.Warn("skipping unreadable bulk archive", "archive", obj.Key, "error", err)
			continue
		}
		batch.Files = append(batch.Files, files...)
		batch.Archives = append(batch.Archives, name)
	}
	return batch, nil
}

// Ack は消費済みのファイルを削除します。
func (s *bhavcopyInbox) Ack(ctx context.Context, batch usecase.BhavcopyBatch) error {
	for _, name := range batch.Archives {
		if err := s.folder.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete %s: %w", s.folder.Key(name), err)
		}
	}
	return nil
}

func unzipMembers(data []byte) ([]entity.BhavcopyFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var out []entity.BhavcopyFile
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open member %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read member %s: %w", f.Name, err)
		}
		out = append(out, entity.BhavcopyFile{Name: f.Name, Data: b})
	}
	return out, nil
}

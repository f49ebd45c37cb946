// Package adapters はcandlesフィーチャーの永続化・外部ソース実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"industry_backend/internal/feature/candles/domain/entity"
	"industry_backend/internal/feature/candles/usecase"
	"industry_backend/internal/platform/blob"
)

// DefaultSeriesFile は系列ファイルの既定の語幹です。
const DefaultSeriesFile = "complete_data1"

// seriesBlob はblobストア上の1ファイルに系列全体を保存します。
type seriesBlob struct {
	folder blob.Folder
	file   string
	codec  SeriesCodec
}

var _ usecase.SeriesRepository = (*seriesBlob)(nil)

// NewSeriesRepository は folder/file+codec拡張子 に系列を保存するリポジトリを生成します。
// file に拡張子が付いていれば取り除きます。
func NewSeriesRepository(folder blob.Folder, file string, codec SeriesCodec) *seriesBlob {
	if file == "" {
		file = DefaultSeriesFile
	}
	file = strings.TrimSuffix(file, path.Ext(file))
	return &seriesBlob{folder: folder, file: file + codec.Ext(), codec: codec}
}

// Load は保存済みの系列を返します。ファイルが無ければ空の系列です。
func (r *seriesBlob) Load(ctx context.Context) ([]entity.Bar, error) {
	data, err := r.folder.Read(ctx, r.file)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read series %s: %w", r.folder.Key(r.file), err)
	}
	return r.codec.Decode(data)
}

// Save は系列全体で既存ファイルを置き換えます。
func (r *seriesBlob) Save(ctx context.Context, bars []entity.Bar) error {
	data, err := r.codec.Encode(bars)
	if err != nil {
		return err
	}
	if err := r.folder.Write(ctx, r.file, data); err != nil {
		return fmt.Errorf("write series %s: %w", r.folder.Key(r.file), err)
	}
	return nil
}

// Key は保存先のキーを返します。
func (r *seriesBlob) Key() string {
	return r.folder.Key(r.file)
}

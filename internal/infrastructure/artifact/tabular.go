package artifact

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/spf13/cast"
	"github.com/valyala/bytebufferpool"
)

// WritePlayersCSV writes one row per player. Columns come from fpl.PlayerColumns so the
// header is the same for every run with the same attribute set.
func WritePlayersCSV(out io.Writer, players []fpl.Player) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	columns := fpl.PlayerColumns(players)
	writer := csv.NewWriter(buf)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, player := range players {
		for idx, column := range columns {
			cell, err := formatCell(player.Value(column))
			if err != nil {
				return fmt.Errorf("player %d column %s: %w", player.ID(), column, err)
			}
			row[idx] = cell
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	_, err := buf.WriteTo(out)
	return err
}

// formatCell renders a missing or null value as an empty cell and nested values as JSON.
func formatCell(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), nil
	case bool:
		return strconv.FormatBool(typed), nil
	case map[string]any, []any:
		return marshalCell(typed)
	default:
		if out, err := cast.ToStringE(typed); err == nil {
			return out, nil
		}
		return marshalCell(typed)
	}
}

func marshalCell(value any) (string, error) {
	raw, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

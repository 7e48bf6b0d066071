package csv

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Signals for row binding and encoding events.
var (
	SignalRowBound      = capitan.NewSignal("csvrow.row.bound", "Row bound to its destinations")
	SignalNoData        = capitan.NewSignal("csvrow.row.nodata", "Source exhausted before a row")
	SignalSourceError   = capitan.NewSignal("csvrow.source.error", "Byte source read failed")
	SignalHeaderMissing = capitan.NewSignal("csvrow.encode.noheader", "Keyed collection encoded without header order")
)

// Keys for typed event data.
var (
	KeyMode   = capitan.NewStringKey("mode")
	KeyRow    = capitan.NewIntKey("row")
	KeyFields = capitan.NewIntKey("fields")
	KeyKeys   = capitan.NewIntKey("keys")
	KeyError  = capitan.NewErrorKey("error")
)

// Binding modes reported in KeyMode.
const (
	modeScalar  = "scalar"
	modeIndexed = "indexed"
	modeKeyed   = "keyed"
)

func emitRowBound(ctx context.Context, mode string, row, fields int) {
	capitan.Emit(ctx, SignalRowBound,
		KeyMode.Field(mode),
		KeyRow.Field(row),
		KeyFields.Field(fields),
	)
}

func emitNoData(ctx context.Context, mode string, row int) {
	capitan.Emit(ctx, SignalNoData,
		KeyMode.Field(mode),
		KeyRow.Field(row),
	)
}

func emitSourceError(ctx context.Context, row int, err error) {
	capitan.Error(ctx, SignalSourceError,
		KeyRow.Field(row),
		KeyError.Field(err),
	)
}

func emitHeaderMissing(ctx context.Context, keys int) {
	capitan.Emit(ctx, SignalHeaderMissing,
		KeyKeys.Field(keys),
	)
}

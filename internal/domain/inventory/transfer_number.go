package inventory

import (
	"fmt"
	"time"
)

// TransferNumberPrefix prefijo de los números de traslado.
const TransferNumberPrefix = "TRF"

// FormatTransferNumber arma TRF-YYYYMMDD-NNNNN con el consecutivo del día (UTC).
func FormatTransferNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", TransferNumberPrefix, day.UTC().Format("20060102"), seq)
}

package sales

import (
	"fmt"
	"time"
)

// FormatSaleNumber arma el número visible: PREFIJO-AAAAMMDD-NNNN.
// El consecutivo se rellena a 4 dígitos y crece sin truncar más allá de 9999.
func FormatSaleNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

package services

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomQueueNumber -> dua huruf acak + "-" + tanggal dan jam, mis. "AB-1419"
func RandomQueueNumber(now time.Time) string {
	return fmt.Sprintf("%c%c-%02d%02d",
		'A'+rune(rand.Intn(26)),
		'A'+rune(rand.Intn(26)),
		now.Day(), now.Hour())
}

package logging

import (
	"time"

	"github.com/beevik/ntp"
)

// WallClockOffset fetches a one-shot offset between the local clock and an
// NTP server, for stamping logs/telemetry with an absolute time alongside
// the monotonic tick clock the scheduler actually runs on. It performs a
// network query, so it does not belong on the control-loop hot path;
// neither binary calls it.
func WallClockOffset(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

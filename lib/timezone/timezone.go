package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
}

// force the portal's timezone regardless of where the server runs,
// otherwise date math on <time.Time>.Year()/Month()/Day() drifts by a day
// around midnight
func Now() time.Time {
	return time.Now().In(Location)
}

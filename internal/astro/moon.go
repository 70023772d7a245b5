package astro

import (
	"math"
	"time"
)

// newMoonJDE returns the Julian ephemeris day of new moon number k, where
// k = 0 is the new moon of 2000-01-06 (Meeus ch. 49).
func newMoonJDE(k float64) float64 {
	t := k / 1236.85
	t2, t3, t4 := t*t, t*t*t, t*t*t*t

	jde := 2451550.09766 + SynodicMonth*k + 0.00015437*t2 - 0.000000150*t3 + 0.00000000073*t4

	e := 1 - 0.002516*t - 0.0000074*t2
	m := rad(2.5534 + 29.10535670*k - 0.0000014*t2 - 0.00000011*t3)
	mp := rad(201.5643 + 385.81693528*k + 0.0107582*t2 + 0.00001238*t3 - 0.000000058*t4)
	f := rad(160.7108 + 390.67050284*k - 0.0016118*t2 - 0.00000227*t3 + 0.000000011*t4)
	om := rad(124.7746 - 1.56375588*k + 0.0020672*t2 + 0.00000215*t3)

	jde += -0.40720*math.Sin(mp) +
		0.17241*e*math.Sin(m) +
		0.01608*math.Sin(2*mp) +
		0.01039*math.Sin(2*f) +
		0.00739*e*math.Sin(mp-m) -
		0.00514*e*math.Sin(mp+m) +
		0.00208*e*e*math.Sin(2*m) -
		0.00111*math.Sin(mp-2*f) -
		0.00057*math.Sin(mp+2*f) +
		0.00056*e*math.Sin(2*mp+m) -
		0.00042*math.Sin(3*mp) +
		0.00042*e*math.Sin(m+2*f) +
		0.00038*e*math.Sin(m-2*f) -
		0.00024*e*math.Sin(2*mp-m) -
		0.00017*math.Sin(om) -
		0.00007*math.Sin(mp+2*m) +
		0.00004*math.Sin(2*mp-2*f) +
		0.00004*math.Sin(3*m) +
		0.00003*math.Sin(mp+m-2*f) +
		0.00003*math.Sin(2*mp+2*f) -
		0.00003*math.Sin(mp+m+2*f) +
		0.00003*math.Sin(mp-m+2*f) -
		0.00002*math.Sin(mp-m-2*f) -
		0.00002*math.Sin(3*mp+m) +
		0.00002*math.Sin(4*mp)

	// Planetary arguments.
	for _, p := range planetary {
		jde += p.coef * math.Sin(rad(p.a+p.b*k+p.c*t2))
	}
	return jde
}

var planetary = [14]struct{ a, b, c, coef float64 }{
	{299.77, 0.107408, -0.009173, 0.000325},
	{251.88, 0.016321, 0, 0.000165},
	{251.83, 26.651886, 0, 0.000164},
	{349.42, 36.412478, 0, 0.000126},
	{84.66, 18.206239, 0, 0.000110},
	{141.74, 53.303771, 0, 0.000062},
	{207.14, 2.453732, 0, 0.000060},
	{154.84, 7.306860, 0, 0.000056},
	{34.52, 27.261239, 0, 0.000047},
	{207.19, 0.121824, 0, 0.000042},
	{291.34, 1.844379, 0, 0.000040},
	{161.72, 24.198154, 0, 0.000037},
	{239.56, 25.513099, 0, 0.000035},
	{331.55, 3.592518, 0, 0.000023},
}

// NewMoon returns the instant of lunation k.
func NewMoon(k int) time.Time {
	return TimeOf(ttToUT(newMoonJDE(float64(k))))
}

// LunationBefore returns the number of the last new moon at or before t.
func LunationBefore(t time.Time) int {
	jd := utToTT(JulianDay(t))
	k := int(math.Floor((jd - 2451550.09766) / SynodicMonth))
	for newMoonJDE(float64(k)) > jd {
		k--
	}
	for newMoonJDE(float64(k+1)) <= jd {
		k++
	}
	return k
}

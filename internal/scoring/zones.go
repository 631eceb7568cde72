package scoring

type Zone string

const (
	ZoneSuccess  Zone = "Success"
	ZoneWarning  Zone = "Warning"
	ZoneCritical Zone = "Critical"
)

// severity: semakin besar semakin ketat
func (z Zone) severity() int {
	switch z {
	case ZoneSuccess:
		return 0
	case ZoneWarning:
		return 1
	default:
		return 2
	}
}

func (z Zone) demote() Zone {
	switch z {
	case ZoneSuccess:
		return ZoneWarning
	default:
		return ZoneCritical
	}
}

func zoneFromAverage(avg float64) Zone {
	switch {
	case avg >= 4.0:
		return ZoneSuccess
	case avg >= 3.0:
		return ZoneWarning
	default:
		return ZoneCritical
	}
}

// combineZones: kalau selisih lebih dari satu level, ambil yang lebih ketat;
// selain itu zona kinerja yang menentukan.
func combineZones(kinerja, perilaku Zone) Zone {
	diff := kinerja.severity() - perilaku.severity()
	if diff < 0 {
		diff = -diff
	}
	if diff > 1 {
		if perilaku.severity() > kinerja.severity() {
			return perilaku
		}
		return kinerja
	}
	return kinerja
}

package thresholds

// ComplexThreshold is the complexity level above which the complex close-time
// table applies.
const ComplexThreshold = 3

// Fewer commits score higher.
var commitCount = Table{
	AtMost(2, 5),
	Between(3, 4, 4),
	Between(5, 6, 3),
	Between(7, 7, 2),
	AtLeast(8, 1),
}

var avgFilesStandard = Table{
	AtMost(3, 5),
	AtMost(6, 4),
	AtMost(10, 3),
	AtMost(15, 2),
	Any(1),
}

var avgFilesLegacy = Table{
	AtMost(5, 5),
	AtMost(10, 4),
	AtMost(15, 3),
	AtMost(25, 2),
	Any(1),
}

var avgLinesStandard = Table{
	AtMost(50, 5),
	AtMost(100, 4),
	AtMost(200, 3),
	AtMost(400, 2),
	Any(1),
}

var avgLinesLegacy = Table{
	AtMost(100, 5),
	AtMost(200, 4),
	AtMost(400, 3),
	AtMost(800, 2),
	Any(1),
}

var linesModifiedStandard = Table{
	AtMost(100, 5),
	AtMost(300, 4),
	AtMost(600, 3),
	AtMost(1000, 2),
	Any(1),
}

var linesModifiedLegacy = Table{
	AtMost(200, 5),
	AtMost(600, 4),
	AtMost(1200, 3),
	AtMost(2000, 2),
	Any(1),
}

// Hours. Complex changes get a longer allowance.
var closeTimeComplex = Table{
	AtMost(24, 5),
	AtMost(48, 4),
	AtMost(72, 3),
	Any(1),
}

// The two sub-hour bands deliberately score very fast closes low. They overlap
// at exactly 0.5h and the first band wins.
var closeTimeSimple = Table{
	AtMost(0.5, 1),
	Between(0.5, 1, 2),
	AtMost(8, 5),
	AtMost(16, 4),
	AtMost(32, 3),
	AtMost(56, 2),
	Any(1),
}

// Observation tables, one per complexity band. Higher bands expect more
// discussion before awarding a high score.
var (
	observationsLow = Table{
		AtLeast(2, 5),
		Between(1, 1, 4),
		Any(3),
	}
	observationsMid = Table{
		AtLeast(4, 5),
		Between(2, 3, 4),
		Between(1, 1, 3),
		Any(2),
	}
	observationsHigh = Table{
		AtLeast(7, 5),
		Between(5, 6, 4),
		Between(3, 4, 3),
		Between(1, 2, 2),
		Any(1),
	}
	observationsMax = Table{
		AtLeast(10, 5),
		Between(7, 9, 4),
		Between(4, 6, 3),
		Between(1, 3, 2),
		Any(1),
	}
)

// CommitCount returns the commit count table.
func CommitCount() Table { return commitCount }

// AvgFilesPerCommit returns the average-files-per-commit table.
func AvgFilesPerCommit(legacy bool) Table {
	if legacy {
		return avgFilesLegacy
	}
	return avgFilesStandard
}

// AvgLinesPerCommit returns the average-lines-per-commit table.
func AvgLinesPerCommit(legacy bool) Table {
	if legacy {
		return avgLinesLegacy
	}
	return avgLinesStandard
}

// LinesModified returns the total-lines-modified table.
func LinesModified(legacy bool) Table {
	if legacy {
		return linesModifiedLegacy
	}
	return linesModifiedStandard
}

// CloseTime returns the close-time table for a complexity level.
func CloseTime(complexity int) Table {
	if complexity > ComplexThreshold {
		return closeTimeComplex
	}
	return closeTimeSimple
}

// Observations returns the observations table for a complexity level, bucketed
// into [1,3), [3,4), [4,5) and 5.
func Observations(complexity int) Table {
	switch {
	case complexity < 3:
		return observationsLow
	case complexity < 4:
		return observationsMid
	case complexity < 5:
		return observationsHigh
	default:
		return observationsMax
	}
}

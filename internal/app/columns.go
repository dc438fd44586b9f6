package service

import "github.com/okian/ironsys/internal/adapters/table"

// Tournament input columns, matched exactly.
const (
	colName        = "Nombre"
	colBodyweight  = "Peso"
	colSex         = "Sexo"
	colTeam        = "Equipo"
	colAge         = "Edad"
	colAgeClass    = "Cat_Edad"
	colWeightClass = "Cat_Peso"
)

var (
	squatCols    = [3]string{"SQ_1", "SQ_2", "SQ_3"}
	benchCols    = [3]string{"BP_1", "BP_2", "BP_3"}
	deadliftCols = [3]string{"DL_1", "DL_2", "DL_3"}
)

// Output columns appended to a tournament table when absent.
const (
	colTotal    = "TOTAL (kg)"
	colProgress = "Progreso"
	colRatio    = "Ratio"
	colCategory = "Category"
	colDOTS     = "DOTS"
	colWilks    = "Wilks"
)

var processedCols = []string{colTotal, colProgress, colRatio, colCategory, colDOTS, colWilks}

// Columns of the team ranking table.
var teamRankingCols = []string{"Ranking", "Equipo / Gremio", "Total Promedio", "Tasa Fallos", "Estrategia"}

// Best-lift columns appended to exports.
var exportBestCols = []string{"Best_SQ", "Best_BP", "Best_DL"}

// Detector fields, matched case-insensitively against header variants.
const (
	fieldAthleteID = "athlete_id"
	fieldName      = "name"
	fieldCoach     = "coach_email"
	fieldTimestamp = "timestamp"
	fieldLift      = "lift"
	fieldReps      = "reps"
	fieldLoad      = "load"
	fieldRPE       = "rpe"
)

func attemptFields(required bool) []table.Field {
	var out []table.Field
	for _, group := range [][3]string{squatCols, benchCols, deadliftCols} {
		for _, c := range group {
			out = append(out, table.Exact(c, required))
		}
	}
	return out
}

func tournamentFields() []table.Field {
	fields := []table.Field{
		table.Exact(colName, true),
		table.Exact(colBodyweight, true),
		table.Exact(colSex, false),
		table.Exact(colTeam, false),
		table.Exact(colAge, false),
		table.Exact(colAgeClass, false),
		table.Exact(colWeightClass, false),
	}
	return append(fields, attemptFields(true)...)
}

func teamFields() []table.Field {
	fields := []table.Field{
		table.Exact(colTeam, true),
		table.Exact(colBodyweight, false),
		table.Exact(colSex, false),
	}
	return append(fields, attemptFields(true)...)
}

func classifyFields() []table.Field {
	return []table.Field{
		table.Exact(colAge, true),
		table.Exact(colBodyweight, true),
	}
}

func athleteFields() []table.Field {
	return []table.Field{
		table.Folded(fieldAthleteID, true, "uuid", "athleteid", "athlete_uuid"),
		table.Folded(fieldName, false, "nombre", "name"),
		table.Folded(fieldCoach, false, "coachemail", "coach_email", "email"),
	}
}

func logFields() []table.Field {
	return []table.Field{
		table.Folded(fieldTimestamp, true, "timestamp", "date", "fecha", "datetime"),
		table.Folded(fieldAthleteID, true, "athlete_uuid", "athleteuuid", "athlete_id", "athleteid", "athlete"),
		table.Folded(fieldLift, false, "exercise", "lift", "lift_name"),
		table.Folded(fieldReps, true, "reps", "repetition", "rep"),
		table.Folded(fieldLoad, true, "load", "weight", "peso"),
		table.Folded(fieldRPE, false, "rpe"),
	}
}

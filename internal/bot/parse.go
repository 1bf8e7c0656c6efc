package bot

import "strings"

// entryArgs is the parsed argument list of a record command. Amount stays raw
// here; the recorder owns its validation.
type entryArgs struct {
	Amount   string
	Category string
	Note     string
}

// parseEntryArgs splits the text after "/receita" or "/gasto" into amount,
// category and free-form note. The category defaults downstream when absent;
// ok is false when not even an amount was given.
func parseEntryArgs(raw string) (entryArgs, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return entryArgs{}, false
	}

	args := entryArgs{Amount: fields[0]}
	if len(fields) > 1 {
		args.Category = fields[1]
	}
	if len(fields) > 2 {
		args.Note = strings.Join(fields[2:], " ")
	}
	return args, true
}

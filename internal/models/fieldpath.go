package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Field paths address individual string cells of a Record for change
// tracking and forward propagation:
//
//	crewInfo.crewName | crewInfo.crewNumber | crewInfo.fireName | crewInfo.fireNumber
//	crew.<i>.name | crew.<i>.classification
//	crew.<i>.day.<j>.date | crew.<i>.day.<j>.on | crew.<i>.day.<j>.off

// FieldValue resolves a field path against the record. The second return
// is false when the path does not exist in this record (unknown field or
// index out of range).
func (r *Record) FieldValue(path string) (string, bool) {
	ptr, err := r.fieldPtr(path)
	if err != nil {
		return "", false
	}
	return *ptr, true
}

// SetFieldValue writes a value at a field path, returning an error for
// paths that do not resolve.
func (r *Record) SetFieldValue(path, value string) error {
	ptr, err := r.fieldPtr(path)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

func (r *Record) fieldPtr(path string) (*string, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "crewInfo":
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid crewInfo field path: %s", path)
		}
		switch parts[1] {
		case "crewName":
			return &r.CrewInfo.CrewName, nil
		case "crewNumber":
			return &r.CrewInfo.CrewNumber, nil
		case "fireName":
			return &r.CrewInfo.FireName, nil
		case "fireNumber":
			return &r.CrewInfo.FireNumber, nil
		}
		return nil, fmt.Errorf("unknown crewInfo field: %s", parts[1])

	case "crew":
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid crew field path: %s", path)
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 || i >= len(r.Data) {
			return nil, fmt.Errorf("crew index out of range in path: %s", path)
		}
		member := &r.Data[i]
		switch parts[2] {
		case "name":
			return &member.Name, nil
		case "classification":
			return &member.Classification, nil
		case "day":
			if len(parts) != 5 {
				return nil, fmt.Errorf("invalid day field path: %s", path)
			}
			j, err := strconv.Atoi(parts[3])
			if err != nil || j < 0 || j >= len(member.Days) {
				return nil, fmt.Errorf("day index out of range in path: %s", path)
			}
			day := &member.Days[j]
			switch parts[4] {
			case "date":
				return &day.Date, nil
			case "on":
				return &day.On, nil
			case "off":
				return &day.Off, nil
			}
			return nil, fmt.Errorf("unknown day field: %s", parts[4])
		}
		return nil, fmt.Errorf("unknown crew field: %s", parts[2])
	}
	return nil, fmt.Errorf("unknown field path: %s", path)
}

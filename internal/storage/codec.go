package storage

import (
	"encoding/json"
	"errors"

	"hpfold/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp returns the current version pair for new records.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeConformation(c model.Conformation) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeConformation(data []byte) (model.Conformation, error) {
	var conformation model.Conformation
	if err := json.Unmarshal(data, &conformation); err != nil {
		return model.Conformation{}, err
	}
	if err := checkVersion(conformation.VersionedRecord); err != nil {
		return model.Conformation{}, err
	}
	return conformation, nil
}

func EncodeEnergyTrace(trace []model.EnergyPoint) ([]byte, error) {
	return json.Marshal(trace)
}

func DecodeEnergyTrace(data []byte) ([]model.EnergyPoint, error) {
	var trace []model.EnergyPoint
	if err := json.Unmarshal(data, &trace); err != nil {
		return nil, err
	}
	return trace, nil
}

func EncodeExchangeStats(stats []model.ExchangeStat) ([]byte, error) {
	return json.Marshal(stats)
}

func DecodeExchangeStats(data []byte) ([]model.ExchangeStat, error) {
	var stats []model.ExchangeStat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// SaveModel serializes an estimator or transformer to a standalone file.
// Each artifact is independent of the run that produced it.
//
// Example:
//
//	nb := models.NewGaussianNB()
//	// ... fit ...
//	err := model.SaveModel(nb, "gnb.gob")
func SaveModel(m interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}

	return nil
}

// LoadModel deserializes a model from a file into m, which must be a pointer
// to the same concrete type that was saved.
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}

	return nil
}

// SaveModelToWriter serializes a model to a writer.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader deserializes a model from a reader.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

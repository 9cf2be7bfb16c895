package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// gazetteer file: bzip2 compressed text, first line is the number of places,
// then one place per line: id \t lat \t lon \t name \t address

func WritePlaces(filename string, places []Place) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)
	if err := writePlaces(w, places); err != nil {
		bz.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func writePlaces(w io.Writer, places []Place) error {
	if _, err := fmt.Fprintf(w, "%d\n", len(places)); err != nil {
		return err
	}
	for _, p := range places {
		latF := strconv.FormatFloat(p.Coordinate.Lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(p.Coordinate.Lon, 'f', -1, 64)
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			sanitizeField(p.ID), latF, lonF, sanitizeField(p.Name), sanitizeField(p.Address))
		if err != nil {
			return err
		}
	}
	return nil
}

func ReadPlaces(filename string) ([]Place, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	return readPlaces(bufio.NewReader(bz))
}

func readPlaces(br *bufio.Reader) ([]Place, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("invalid gazetteer header %q: %w", line, err)
	}

	places := make([]Place, 0, n)
	for i := 0; i < n; i++ {
		line, err = readLine(br)
		if err != nil {
			return nil, fmt.Errorf("gazetteer line %d: %w", i+2, err)
		}
		tokens := strings.Split(line, "\t")
		if len(tokens) != 5 {
			return nil, fmt.Errorf("gazetteer line %d: expected 5 fields, got %d", i+2, len(tokens))
		}
		lat, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, fmt.Errorf("gazetteer line %d: %w", i+2, err)
		}
		lon, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return nil, fmt.Errorf("gazetteer line %d: %w", i+2, err)
		}
		places = append(places, NewPlace(tokens[0], tokens[3], tokens[4], lat, lon))
	}
	return places, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func sanitizeField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mdf/mdf"
)

type fileReport struct {
	Path       string        `yaml:"path" cbor:"path"`
	Version    string        `yaml:"version" cbor:"version"`
	DataGroups []groupReport `yaml:"data_groups" cbor:"data_groups"`
}

type groupReport struct {
	Properties    []mdf.Property       `yaml:"properties" cbor:"properties"`
	ChannelGroups []channelGroupReport `yaml:"channel_groups" cbor:"channel_groups"`
	Records       *recordReport        `yaml:"records,omitempty" cbor:"records,omitempty"`
	Digest        string               `yaml:"digest,omitempty" cbor:"digest,omitempty"`
}

type channelGroupReport struct {
	Properties []mdf.Property  `yaml:"properties" cbor:"properties"`
	Channels   []channelReport `yaml:"channels" cbor:"channels"`
	Samples    uint64          `yaml:"samples" cbor:"samples"`
}

type channelReport struct {
	Name       string `yaml:"name" cbor:"name"`
	Type       string `yaml:"type" cbor:"type"`
	DataType   uint8  `yaml:"data_type" cbor:"data_type"`
	ByteOffset uint32 `yaml:"byte_offset" cbor:"byte_offset"`
	BitOffset  uint8  `yaml:"bit_offset" cbor:"bit_offset"`
	BitCount   uint32 `yaml:"bit_count" cbor:"bit_count"`
}

type recordReport struct {
	Records  uint64 `yaml:"records" cbor:"records"`
	Bytes    int64  `yaml:"bytes" cbor:"bytes"`
	Size     int64  `yaml:"size" cbor:"size"`
	ZeroCopy bool   `yaml:"zero_copy" cbor:"zero_copy"`
	Stopped  string `yaml:"stopped" cbor:"stopped"`
}

func describeGroup(dg *mdf.DataGroup) groupReport {
	g := groupReport{Properties: dg.Properties()}
	for _, cg := range dg.ChannelGroups() {
		cr := channelGroupReport{Properties: cg.Properties()}
		for _, ch := range cg.Channels() {
			cr.Channels = append(cr.Channels, channelReport{
				Name:       ch.Name(),
				Type:       ch.Type().String(),
				DataType:   uint8(ch.DataType()),
				ByteOffset: ch.ByteOffset(),
				BitOffset:  ch.BitOffset(),
				BitCount:   ch.BitCount(),
			})
		}
		g.ChannelGroups = append(g.ChannelGroups, cr)
	}
	return g
}

// fillSamples copies the sample counts of the last populate into g.
func fillSamples(g *groupReport, dg *mdf.DataGroup) {
	for i, cg := range dg.ChannelGroups() {
		g.ChannelGroups[i].Samples = cg.Samples()
	}
}

// digest returns the hex BLAKE3 digest of the joined record stream.
func digest(dg *mdf.DataGroup, src io.ReaderAt) (string, error) {
	stream, err := dg.OpenRecordStream(src)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	h := blake3.New()
	if _, err := io.Copy(h, io.NewSectionReader(stream, 0, stream.Size())); err != nil {
		return "", fmt.Errorf("hashing record stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeReport(w io.Writer, format string, r *fileReport) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		em, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return err
		}
		return em.NewEncoder(w).Encode(r)
	default:
		return writeText(w, r)
	}
}

func writeText(w io.Writer, r *fileReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s (MDF %s) ===\n", r.Path, r.Version)
	for i, g := range r.DataGroups {
		fmt.Fprintf(&b, "\nData group %d\n", i)
		writeProperties(&b, "  ", g.Properties)
		for j, cg := range g.ChannelGroups {
			fmt.Fprintf(&b, "  Channel group %d\n", j)
			writeProperties(&b, "    ", cg.Properties)
			for _, ch := range cg.Channels {
				fmt.Fprintf(&b, "      %-24s %-14s byte %d bit %d (%d bits)\n",
					ch.Name, ch.Type, ch.ByteOffset, ch.BitOffset, ch.BitCount)
			}
			if g.Records != nil {
				fmt.Fprintf(&b, "    Samples: %d\n", cg.Samples)
			}
		}
		if rec := g.Records; rec != nil {
			fmt.Fprintf(&b, "  Records: %d (%d of %d bytes, zero copy %t, stopped: %s)\n",
				rec.Records, rec.Bytes, rec.Size, rec.ZeroCopy, rec.Stopped)
		}
		if g.Digest != "" {
			fmt.Fprintf(&b, "  BLAKE3: %s\n", g.Digest)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeProperties(b *strings.Builder, indent string, props []mdf.Property) {
	for _, p := range props {
		if p.Description != "" {
			fmt.Fprintf(b, "%s%-24s %s (%s)\n", indent, p.Label+":", p.Value, p.Description)
			continue
		}
		fmt.Fprintf(b, "%s%-24s %s\n", indent, p.Label+":", p.Value)
	}
}

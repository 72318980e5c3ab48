package neat

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedGenome is returned when persisted genome text cannot be decoded.
var ErrMalformedGenome = errors.New("malformed genome")

const (
	genomeHeader      = "Genome:Innovation="
	nodesHeader       = "Nodes:"
	connectionsHeader = "Connections:"
	geneSeparator     = "; "
)

// MarshalText encodes the genome as three lines:
//
//	Genome:Innovation=<next innovation>
//	Nodes: <id>,<method>,<type>,<activation>; ...
//	Connections: <innovation>,<in>,<out>,<weight>,<expressed>; ...
func (g *Genome) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(genomeHeader)
	buf.WriteString(strconv.Itoa(g.innovation.Peek()))
	buf.WriteByte('\n')

	buf.WriteString(nodesHeader)
	for _, n := range g.nodes {
		fmt.Fprintf(&buf, " %d,%s,%s,%s;", n.ID, n.Method, n.Type, n.Activation)
	}
	buf.WriteByte('\n')

	buf.WriteString(connectionsHeader)
	for _, c := range g.conns {
		fmt.Fprintf(&buf, " %d,%d,%d,%s,%t;", c.Innovation, c.In, c.Out,
			strconv.FormatFloat(c.Weight, 'g', -1, 64), c.Expressed)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// UnmarshalText replaces g with the genome encoded in text. On error g is left
// untouched.
func (g *Genome) UnmarshalText(text []byte) error {
	decoded, err := decodeGenome(text)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

// Save writes the text encoding of g to w.
func Save(w io.Writer, g *Genome) error {
	text, err := g.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

// Load reads one genome in text encoding from r.
func Load(r io.Reader) (*Genome, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read genome: %w", err)
	}
	return decodeGenome(text)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedGenome, fmt.Sprintf(format, args...))
}

func decodeGenome(text []byte) (*Genome, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGenome, err)
	}
	if len(lines) != 3 {
		return nil, malformed("expected 3 records, got %d", len(lines))
	}

	if !strings.HasPrefix(lines[0], genomeHeader) {
		return nil, malformed("missing %q record", genomeHeader)
	}
	next, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lines[0], genomeHeader)))
	if err != nil || next < 0 {
		return nil, malformed("invalid innovation counter in %q", lines[0])
	}

	nodeFields, err := splitRecord(lines[1], nodesHeader)
	if err != nil {
		return nil, err
	}
	connFields, err := splitRecord(lines[2], connectionsHeader)
	if err != nil {
		return nil, err
	}

	g := newEmptyGenome()
	for _, f := range nodeFields {
		n, err := parseNodeGene(f)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGenome, err)
		}
	}
	if len(g.InputIDs()) == 0 || len(g.OutputIDs()) == 0 {
		return nil, malformed("need at least one input and one output node, got %d and %d",
			len(g.InputIDs()), len(g.OutputIDs()))
	}
	for _, f := range connFields {
		c, err := parseConnectionGene(f)
		if err != nil {
			return nil, err
		}
		if err := g.AddConnection(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedGenome, err)
		}
	}
	// AddConnection already raised the counter past every stored innovation.
	g.innovation.Observe(next - 1)
	return g, nil
}

// splitRecord strips the record header and returns the comma-separated field
// lists of each gene. Only the piece after the final separator may be empty.
func splitRecord(line, header string) ([][]string, error) {
	if !strings.HasPrefix(line, header) {
		return nil, malformed("missing %q record", header)
	}
	body := strings.TrimPrefix(line, header)
	pieces := strings.Split(body, ";")
	var genes [][]string
	for i, gene := range pieces {
		gene = strings.TrimSpace(gene)
		if gene == "" {
			if i == len(pieces)-1 {
				continue
			}
			return nil, malformed("%s empty gene at position %d", header, i)
		}
		fields := strings.Split(gene, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		genes = append(genes, fields)
	}
	return genes, nil
}

func parseNodeGene(f []string) (NodeGene, error) {
	if len(f) != 4 {
		return NodeGene{}, malformed("node gene %q: expected 4 fields, got %d", strings.Join(f, ","), len(f))
	}
	id, err := strconv.Atoi(f[0])
	if err != nil {
		return NodeGene{}, malformed("node gene %q: invalid id: %v", strings.Join(f, ","), err)
	}
	method, err := ParseCalculationMethod(f[1])
	if err != nil {
		return NodeGene{}, malformed("node gene %d: %v", id, err)
	}
	typ, err := ParseNodeType(f[2])
	if err != nil {
		return NodeGene{}, malformed("node gene %d: %v", id, err)
	}
	act, err := ParseActivation(f[3])
	if err != nil {
		return NodeGene{}, malformed("node gene %d: %v", id, err)
	}
	return NodeGene{ID: id, Type: typ, Activation: act, Method: method}, nil
}

func parseConnectionGene(f []string) (ConnectionGene, error) {
	if len(f) != 5 {
		return ConnectionGene{}, malformed("connection gene %q: expected 5 fields, got %d", strings.Join(f, ","), len(f))
	}
	var ints [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return ConnectionGene{}, malformed("connection gene %q: invalid integer %q", strings.Join(f, ","), f[i])
		}
		ints[i] = v
	}
	w, err := strconv.ParseFloat(f[3], 64)
	if err != nil {
		return ConnectionGene{}, malformed("connection gene %d: invalid weight %q", ints[0], f[3])
	}
	expressed, err := strconv.ParseBool(f[4])
	if err != nil {
		return ConnectionGene{}, malformed("connection gene %d: invalid expressed flag %q", ints[0], f[4])
	}
	return ConnectionGene{Innovation: ints[0], In: ints[1], Out: ints[2], Weight: w, Expressed: expressed}, nil
}

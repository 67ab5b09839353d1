package archive

import (
	"reflect"
	"testing"

	"k8s.io/utils/ptr"
)

func TestMergeErrorCounters(t *testing.T) {
	type args struct {
		ec1 *ErrorCounter
		ec2 *ErrorCounter
	}
	tests := []struct {
		name string
		args args
		want *ErrorCounter
	}{
		{
			name: "merge both",
			args: args{
				ec1: &ErrorCounter{"error": 1, `panicked at`: 10},
				ec2: &ErrorCounter{"error": 1, `panicked at`: 0},
			},
			want: &ErrorCounter{"error": 2, `panicked at`: 10},
		},
		{
			name: "merge new keys",
			args: args{
				ec1: &ErrorCounter{"error": 20000},
				ec2: &ErrorCounter{"error": 1, `timed out`: 0},
			},
			want: &ErrorCounter{"error": 20001, `timed out`: 0},
		},
		{
			name: "both null",
			args: args{
				ec1: nil,
				ec2: nil,
			},
			want: &ErrorCounter{},
		},
		{
			name: "ec1 null",
			args: args{
				ec1: nil,
				ec2: &ErrorCounter{"error": 1},
			},
			want: &ErrorCounter{"error": 1},
		},
		{
			name: "ec2 null",
			args: args{
				ec1: &ErrorCounter{"error": 1},
				ec2: nil,
			},
			want: &ErrorCounter{"error": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeErrorCounters(tt.args.ec1, tt.args.ec2); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeErrorCounters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewErrorCounter(t *testing.T) {
	type args struct {
		buf     *string
		pattern []string
	}
	tests := []struct {
		name string
		args args
		want ErrorCounter
	}{
		{
			name: "parse counters",
			args: args{
				buf: ptr.To("thread 'tests::a' panicked at src/lib.rs:10:5:\n" +
					"assertion `left == right` failed\n  left: 1\n right: 2\n" +
					"error: test failed, to rerun pass `--lib`"),
				pattern: CommonErrorPatterns,
			},
			want: ErrorCounter{
				`panicked at`: 1, `assertion( .+)? failed`: 1,
				`error`: 1, `total`: 3,
			},
		},
		{
			name: "unwrap on none",
			args: args{
				buf:     ptr.To("called `Option::unwrap()` on a `None` value"),
				pattern: CommonErrorPatterns,
			},
			want: ErrorCounter{
				"called .Option::unwrap\\(\\). on a .None. value": 1, `total`: 1,
			},
		},
		{
			name: "no counters",
			args: args{
				buf:     ptr.To(`this buffer has nothing to parse`),
				pattern: CommonErrorPatterns,
			},
			want: nil,
		},
		{
			name: "nil buffer",
			args: args{
				buf:     nil,
				pattern: CommonErrorPatterns,
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewErrorCounter(tt.args.buf, tt.args.pattern); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewErrorCounter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCounterPatterns(t *testing.T) {
	ec := ErrorCounter{"b": 1, "a": 1, "c": 4, "total": 6}

	if got := ec.Patterns(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("Patterns() = %v", got)
	}
	if ec.Total() != 6 {
		t.Errorf("Total() = %d", ec.Total())
	}
}
